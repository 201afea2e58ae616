package catalog

// Opts specifies params for building a KnotSet.
//
// The angle modulus and the number of parity classes are separate quantities.  Historically both were read
// from num_angles, so when ParityCount is not given it defaults to the modulus.
type Opts struct {
	Modulus     int32    // angle modulus M; 0 denotes the report's num_angles
	ParityCount int32    // number of parity classes; 0 denotes the report's parity_count, else Modulus
	Penalty     *float64 // cost given to unknown neighbors; nil denotes knot.PenaltyCost
}

// Record is a single serialized knot entry.
type Record struct {
	Angles      []int32  `json:"angles"                yaml:"angles"`
	FinalAngle  *float64 `json:"final_angle,omitempty" yaml:"final_angle,omitempty"`
	TotalCost   float64  `json:"total_cost"            yaml:"total_cost"`
	AngleParity int32    `json:"angle_parity"          yaml:"angle_parity"`
}

// Report is a serialized knot catalogue as produced by the exhaustive search tools.
type Report struct {
	NumAngles   int32    `json:"num_angles"             yaml:"num_angles"`
	ParityCount int32    `json:"parity_count,omitempty" yaml:"parity_count,omitempty"`
	Knots       []Record `json:"knots"                  yaml:"knots"`
}
