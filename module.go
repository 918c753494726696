package depload

// Module groups service definitions so they can be registered together.
type Module struct {
	name       string
	services   []Service
	submodules []*Module
}

func NewModule(name string) *Module {
	return &Module{
		name: name,
	}
}

func (m *Module) Name() string {
	return m.name
}

func (m *Module) Register(svcs ...Service) *Module {
	m.services = append(m.services, svcs...)
	return m
}

func (m *Module) Include(submodule *Module) *Module {
	m.submodules = append(m.submodules, submodule)
	return m
}

func (m *Module) apply(c *Container) error {
	for _, sub := range m.submodules {
		if err := sub.apply(c); err != nil {
			return err
		}
	}

	for _, svc := range m.services {
		if err := c.Register(svc); err != nil {
			return err
		}
	}

	return nil
}

// Apply registers every service of the given modules, submodules first.
// The first failing registration aborts the whole call; services registered
// before it stay registered.
func (c *Container) Apply(modules ...*Module) error {
	for _, m := range modules {
		if err := m.apply(c); err != nil {
			return errModuleApplyFailed(m.name, err)
		}
	}
	return nil
}

func errModuleApplyFailed(moduleName string, cause error) *Error {
	return newError(
		ErrCodeModuleApplyFailed,
		"failed to apply module "+moduleName,
		cause,
	)
}
