package cmd

import (
	"fmt"

	"github.com/kiosk404/hookmind/pkg/version"
)

const bannerText = `
  _                 _               _           _
 | |__   ___   ___ | | ___ __ ___ (_)_ __   __| |
 | '_ \ / _ \ / _ \| |/ / '_ ` + "`" + ` _ \| | '_ \ / _` + "`" + ` |
 | | | | (_) | (_) |   <| | | | | | | | | | (_| |
 |_| |_|\___/ \___/|_|\_\_| |_| |_|_|_| |_|\__,_|

      Hookmind Plugin Runtime
`

// Banner returns the CLI banner string.
func Banner() string {
	return fmt.Sprintf("%s\n  Version: %s\n", bannerText, version.Get().String())
}
