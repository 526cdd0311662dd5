package control

import "github.com/ghalamif/BattleTrack/internal/domain"

// Mix converts a turn/throttle intent into per-track speeds: throttle is
// common mode, turn is differential.
func Mix(x, y int8) (left, right int8) {
	return domain.ClampCommand(int(y) + int(x)), domain.ClampCommand(int(y) - int(x))
}

// Spin rotates in place: equal magnitude, opposite direction.
func Spin(speed int8) (left, right int8) {
	s := domain.ClampCommand(int(speed))
	return s, -s
}

// SideCommand turns one signed track speed into an H-bridge command.
func SideCommand(v int8) domain.MotorCommand {
	switch {
	case v > 0:
		return domain.MotorCommand{Direction: domain.DirForward, Duty: uint8(clamp(int(v), 0, domain.MaxCommand))}
	case v < 0:
		return domain.MotorCommand{Direction: domain.DirBackward, Duty: uint8(clamp(-int(v), 0, domain.MaxCommand))}
	default:
		return domain.MotorCommand{Direction: domain.DirStop}
	}
}

// Tracks resolves a drive command to the pair of track commands it implies.
// ok is false for Enable/Disable, which only touch the standby line.
func Tracks(cmd domain.DriveCommand) (left, right domain.MotorCommand, ok bool) {
	switch cmd.Kind {
	case domain.DriveMove:
		l, r := Mix(cmd.X, cmd.Y)
		return SideCommand(l), SideCommand(r), true
	case domain.DriveSpin:
		l, r := Spin(cmd.Speed)
		return SideCommand(l), SideCommand(r), true
	case domain.DriveStop:
		stop := domain.MotorCommand{Direction: domain.DirStop}
		return stop, stop, true
	default:
		return domain.MotorCommand{}, domain.MotorCommand{}, false
	}
}
