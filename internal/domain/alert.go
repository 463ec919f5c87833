package domain

// TimeSpec is a recurring wall-clock trigger.
type TimeSpec struct {
	Hour    int
	Minute  int
	Weekday int // 1=Sunday..7=Saturday; 0 fires every day
}

// SpecAt builds a TimeSpec from an HH:MM clock and an optional weekday.
func SpecAt(clock string, weekday int) TimeSpec {
	mins := clampMinute(ParseClock(clock))
	return TimeSpec{Hour: mins / 60, Minute: mins % 60, Weekday: weekday}
}

// Alert is one recurring local reminder handed to the gateway.
type Alert struct {
	ID             int
	Title          string
	Body           string
	At             TimeSpec
	DisplayChannel string
}

// DisplayChannel is an OS-level notification category.
type DisplayChannel struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Importance  int    `yaml:"importance"`
	Sound       bool   `yaml:"sound"`
	Vibration   bool   `yaml:"vibration"`
}
