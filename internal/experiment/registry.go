package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidlab/internal/integrators"
	"github.com/san-kum/pidlab/internal/loop"
	"github.com/san-kum/pidlab/internal/metrics"
	"github.com/san-kum/pidlab/internal/plant"
)

type Registry struct {
	plants      map[string]func() plant.System
	integrators map[string]func() plant.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		plants:      make(map[string]func() plant.System),
		integrators: make(map[string]func() plant.Integrator),
	}

	r.plants["first_order"] = func() plant.System { return plant.NewFirstOrder() }
	r.plants["mass"] = func() plant.System { return plant.NewMass() }
	r.plants["thermal"] = func() plant.System { return plant.NewThermal() }

	r.integrators["euler"] = func() plant.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() plant.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() plant.Integrator { return integrators.NewRK45() }

	return r
}

func (r *Registry) GetPlant(name string) (plant.System, error) {
	fn, ok := r.plants[name]
	if !ok {
		return nil, fmt.Errorf("unknown plant: %s (available: %v)", name, r.ListPlants())
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (plant.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListPlants() []string {
	names := make([]string, 0, len(r.plants))
	for name := range r.plants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(dt float64) []loop.Metric {
	return []loop.Metric{
		metrics.NewControlEffort(),
		metrics.NewOutputStdDev(),
		metrics.NewIAE(dt),
		metrics.NewSteadyStateError(0.1),
		metrics.NewOvershoot(),
		metrics.NewSaturation(),
	}
}
