package ports

// Metric names reported through Observability.
const (
	MetricPolls             = "battletrack_polls_total"
	MetricInputReadFailures = "battletrack_input_read_failures_total"
	MetricUnexpectedDevice  = "battletrack_unexpected_device_total"
	MetricCommandsSent      = "battletrack_commands_sent_total"
	MetricStatusDropped     = "battletrack_status_dropped_total"
	MetricActuatorFaults    = "battletrack_actuator_faults_total"
	MetricTransitions       = "battletrack_transitions_total"
	MetricState             = "battletrack_state"
	MetricServoAngle        = "battletrack_servo_angle"
	MetricMotorActive       = "battletrack_motor_active"
	MetricDecisionLatency   = "battletrack_decision_latency_seconds"
	MetricCommandBacklog    = "battletrack_command_backlog"
	MetricJournalErrors     = "battletrack_journal_errors_total"
)
