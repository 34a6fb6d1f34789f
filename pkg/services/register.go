package services

import "github.com/askiada/go-pisa/pkg/stage"

// Register installs every service of this package into reg.
func Register(reg *stage.Registry) error {
	for _, s := range []struct {
		role, service string
		factory       stage.Factory
	}{
		{"flux", "constant", NewConstantFlux},
		{"aeff", "simple", NewSimpleAeff},
		{"reco", "gaussian", NewGaussianReco},
	} {
		if err := reg.Register(s.role, s.service, s.factory); err != nil {
			return err
		}
	}
	return nil
}
