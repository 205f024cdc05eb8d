package mapping

import (
	"fmt"

	"vdm-generator/internal/naming"
)

// ServiceNames are the top-level names generated for one service.
type ServiceNames struct {
	ClassName   string
	PackageName string
}

// ClassNameKey and PackageNameKey build the store keys for a service.
func ClassNameKey(serviceID string) string   { return serviceID + ".className" }
func PackageNameKey(serviceID string) string { return serviceID + ".packageName" }

// ResolveServiceNames returns the stored names for serviceID and derives
// only the missing ones through strategy, persisting them in store. Stored
// values are returned verbatim and are never run through the strategy again.
func ResolveServiceNames(store *Store, serviceID string, strategy naming.Strategy) (ServiceNames, error) {
	var names ServiceNames

	className, ok := store.Get(ClassNameKey(serviceID))
	if !ok {
		derived, err := strategy.ServiceClassNameFor(serviceID)
		if err != nil {
			return ServiceNames{}, fmt.Errorf("service %s: %w", serviceID, err)
		}
		className = derived
		store.Put(ClassNameKey(serviceID), className, fmt.Sprintf("Service class name for %s", serviceID))
	}
	names.ClassName = className

	packageName, ok := store.Get(PackageNameKey(serviceID))
	if !ok {
		derived, err := strategy.ServicePackageNameFor(serviceID)
		if err != nil {
			return ServiceNames{}, fmt.Errorf("service %s: %w", serviceID, err)
		}
		packageName = derived
		store.Put(PackageNameKey(serviceID), packageName)
	}
	names.PackageName = packageName

	return names, nil
}
