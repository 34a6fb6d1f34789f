// Package services provides the stage implementations shipped with the
// pipeline. Orchestration only relies on the stage contract; the numbers
// these services produce are deliberately simple.
//
// Call Register to install them into a stage registry:
//
//	reg := stage.NewRegistry()
//	if err := services.Register(reg); err != nil {
//		return err
//	}
package services
