package domain

// Permission is the last observed state of the device's alert permission.
type Permission int

const (
	PermissionUnknown Permission = iota
	PermissionGranted
	PermissionDenied
	PermissionPrompt
	PermissionPromptWithRationale
)

var permissionNames = map[Permission]string{
	PermissionUnknown:             "unknown",
	PermissionGranted:             "granted",
	PermissionDenied:              "denied",
	PermissionPrompt:              "prompt",
	PermissionPromptWithRationale: "prompt-with-rationale",
}

func (p Permission) String() string {
	if s, ok := permissionNames[p]; ok {
		return s
	}
	return "unknown"
}

// Granted reports whether scheduling is allowed.
func (p Permission) Granted() bool { return p == PermissionGranted }

// MarshalText lets Permission render by name in JSON and YAML.
func (p Permission) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
