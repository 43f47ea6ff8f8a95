package ops

// RegisterAll installs every operation family in the catalogue into r.
// cmd/infrared wires one Registry per compilation by calling this once.
func RegisterAll(r *Registry) error {
	families := []func(*Registry) error{
		RegisterBase,
		RegisterConstruct,
		RegisterPointer,
		RegisterGraph,
		RegisterSet,
		RegisterString,
		RegisterControl,
		RegisterRender,
	}
	for _, reg := range families {
		if err := reg(r); err != nil {
			return err
		}
	}
	return nil
}
