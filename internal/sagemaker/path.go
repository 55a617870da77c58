// Package sagemaker implements the hosting container's filesystem
// contract: hyperparameters, data channels, and the model directory
// all live under a fixed layout rooted at /opt/ml.
package sagemaker

import "path/filepath"

// Path resolves locations inside the container layout.
type Path struct {
	Base string
}

func NewPath(base string) Path {
	return Path{Base: base}
}

func (p Path) Model() string {
	return filepath.Join(p.Base, "model")
}

func (p Path) Output() string {
	return filepath.Join(p.Base, "output")
}

func (p Path) FailureFile() string {
	return filepath.Join(p.Output(), "failure")
}

func (p Path) InputConfig() string {
	return filepath.Join(p.Base, "input", "config")
}

func (p Path) HyperparametersFile() string {
	return filepath.Join(p.InputConfig(), "hyperparameters.json")
}

func (p Path) Data() string {
	return filepath.Join(p.Base, "input", "data")
}

func (p Path) Channel(name string) string {
	return filepath.Join(p.Data(), name)
}
