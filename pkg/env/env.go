// Package env keeps names of environment variables with special significance to
// Servo.
package env

// Environment variables with special significance to Servo.
const (
	HOME            = "HOME"
	SERVO_CONFIG    = "SERVO_CONFIG"
	SERVO_HISTORY   = "SERVO_HISTORY"
	SHELL           = "SHELL"
	XDG_CONFIG_HOME = "XDG_CONFIG_HOME"
	XDG_STATE_HOME  = "XDG_STATE_HOME"
)
