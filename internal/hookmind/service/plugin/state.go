package plugin

import "fmt"

// State is the lifecycle state of a loaded plugin.
type State int

const (
	// StateUnloaded means the registry has not loaded the plugin.
	StateUnloaded State = iota
	// StateLoaded means metadata and hook declarations are resolved but no hook is registered.
	StateLoaded
	// StateActivated means the plugin's hooks are in the hook table.
	StateActivated
	// StateDeactivated means the plugin was active and its hooks were removed.
	StateDeactivated
	// StateUninstalled is terminal; the plugin's external state was removed.
	StateUninstalled
)

var stateNames = map[State]string{
	StateUnloaded:    "unloaded",
	StateLoaded:      "loaded",
	StateActivated:   "activated",
	StateDeactivated: "deactivated",
	StateUninstalled: "uninstalled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState is the inverse of State.String.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return StateUnloaded, fmt.Errorf("unknown plugin state %q", name)
}

// canActivate reports whether Activate may move the plugin to StateActivated.
func (s State) canActivate() bool {
	return s == StateLoaded || s == StateDeactivated
}
