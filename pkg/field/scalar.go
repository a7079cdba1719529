package field

import "gridflow/pkg/vec"

// ScalarField2 is any scalar quantity samplable at an arbitrary point.
type ScalarField2 interface {
	Sample(p vec.V2) float64
}

// VectorField2 is any vector quantity samplable at an arbitrary point.
type VectorField2 interface {
	Sample(p vec.V2) vec.V2
}

// ConstantScalarField is a ScalarField2 with the same value everywhere. It is
// a value type so defaults like the "fluid everywhere" signed distance can be
// held by the solver without per-step allocation.
type ConstantScalarField struct {
	Value float64
}

// Sample returns the constant value.
func (c ConstantScalarField) Sample(vec.V2) float64 { return c.Value }

// ConstantVectorField is a VectorField2 with the same value everywhere.
type ConstantVectorField struct {
	Value vec.V2
}

// Sample returns the constant value.
func (c ConstantVectorField) Sample(vec.V2) vec.V2 { return c.Value }
