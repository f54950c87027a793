package interact

// Mode is the interaction mode.
type Mode int

const (
	Viewing Mode = iota
	CreatingShard
	EditingShard
	EditingPoints
)

var modeNames = [...]string{"viewing", "creatingShard", "editingShard", "editingPoints"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// InForm reports whether a shard form belongs to the mode.
func (m Mode) InForm() bool { return m == CreatingShard || m == EditingShard }
