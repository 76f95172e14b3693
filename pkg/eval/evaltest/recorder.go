package evaltest

// Recorder is a process runner that records commands instead of running
// them.
type Recorder struct {
	// Output of captured commands; commands not in the map output nothing.
	Captured map[string]string
	// Errors of failing commands.
	Failing map[string]error
	// Commands run so far, in order.
	Cmds []string
}

// Run records cmd.
func (r *Recorder) Run(cmd string) error {
	r.Cmds = append(r.Cmds, cmd)
	return r.Failing[cmd]
}

// RunCaptured records cmd and returns its configured output.
func (r *Recorder) RunCaptured(cmd string) (string, error) {
	r.Cmds = append(r.Cmds, cmd)
	if err := r.Failing[cmd]; err != nil {
		return "", err
	}
	return r.Captured[cmd], nil
}
