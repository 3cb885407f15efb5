package plugin

import (
	"errors"
	"fmt"

	"github.com/kiosk404/hookmind/pkg/logger"
)

// ErrSlotDisabled is returned when configuration reserves a slot for another
// plugin or disables it.
var ErrSlotDisabled = errors.New("plugin slot is not available to this plugin")

// SlotTheme is the exclusive slot taken by plugins whose metadata marks them
// as a theme.
const SlotTheme = "theme"

// SlotConfig maps slot kind → desired plugin name.
//
// Special values:
//   - "none": no plugin may take the slot
//   - "": the first plugin activated takes the slot
type SlotConfig map[string]string

// ResolveSlot decides whether pluginName may take the slot kind, given the
// current owners of every slot. It returns nil when the plugin may proceed.
func ResolveSlot(kind, pluginName string, owners map[string]string, config SlotConfig) error {
	if kind == "" {
		return nil
	}

	desired := config[kind]
	if desired == "none" {
		return fmt.Errorf("slot %q is disabled by configuration: %w", kind, ErrSlotDisabled)
	}
	if desired != "" && desired != pluginName {
		return fmt.Errorf("slot %q is assigned to %q, refusing %q: %w", kind, desired, pluginName, ErrSlotDisabled)
	}
	if owner, ok := owners[kind]; ok && owner != pluginName {
		return fmt.Errorf("slot %q already occupied by %q, cannot activate %q: %w", kind, owner, pluginName, ErrSlotOccupied)
	}

	logger.Debug("[Plugin] slot %q assigned to plugin %q", kind, pluginName)
	return nil
}
