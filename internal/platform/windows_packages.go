//go:build windows
// +build windows

package platform

import (
	"os"

	"golang.org/x/sys/windows/registry"
)

// appModelPackagesKey holds one subkey per AppX/MSIX package, which is what
// winget lists as installed for the current user.
const appModelPackagesKey = `Software\Classes\Local Settings\Software\Microsoft\Windows\CurrentVersion\AppModel\Repository\Packages`

func (p *windowsProbe) Packages() ([]PackageCount, error) {
	managers := []packageManager{{name: "winget", count: wingetCount}}
	return countPackages(append(managers, windowsDirPackageManagers(os.Getenv)...))
}

func wingetCount() (uint64, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, appModelPackagesKey, registry.QUERY_VALUE|registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return 0, err
	}
	defer k.Close()
	info, err := k.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(info.SubKeyCount), nil
}
