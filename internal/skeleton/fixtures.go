package skeleton

// jointOffsets places each joint relative to the spine base of an upright
// person facing the sensor.
var jointOffsets = [NumJointTypes]Point3D{
	SpineBase:     {0, 0, 0},
	SpineMid:      {0, 0.30, -0.02},
	Neck:          {0, 0.58, -0.04},
	Head:          {0, 0.72, -0.05},
	ShoulderLeft:  {-0.18, 0.50, -0.03},
	ElbowLeft:     {-0.25, 0.25, -0.02},
	WristLeft:     {-0.27, 0.02, -0.04},
	HandLeft:      {-0.27, -0.05, -0.05},
	ShoulderRight: {0.18, 0.50, -0.03},
	ElbowRight:    {0.25, 0.25, -0.02},
	WristRight:    {0.27, 0.02, -0.04},
	HandRight:     {0.27, -0.05, -0.05},
	HipLeft:       {-0.09, -0.03, 0},
	KneeLeft:      {-0.10, -0.45, 0.02},
	AnkleLeft:     {-0.10, -0.85, 0.05},
	FootLeft:      {-0.10, -0.90, -0.05},
	HipRight:      {0.09, -0.03, 0},
	KneeRight:     {0.10, -0.45, 0.02},
	AnkleRight:    {0.10, -0.85, 0.05},
	FootRight:     {0.10, -0.90, -0.05},
	SpineShoulder: {0, 0.52, -0.04},
	HandTipLeft:   {-0.27, -0.12, -0.06},
	ThumbLeft:     {-0.24, -0.07, -0.08},
	HandTipRight:  {0.27, -0.12, -0.06},
	ThumbRight:    {0.24, -0.07, -0.08},
}

// BodyAt returns a fully tracked upright body whose spine base is at base.
func BodyAt(id uint64, base Point3D) Body {
	body := Body{
		ID:      id,
		Tracked: true,
		Joints:  make(map[JointType]Joint, NumJointTypes),
	}
	for i := JointType(0); i < NumJointTypes; i++ {
		off := jointOffsets[i]
		body.Joints[i] = Joint{
			Type:     i,
			Position: Point3D{X: base.X + off.X, Y: base.Y + off.Y, Z: base.Z + off.Z},
			State:    Tracked,
		}
	}
	return body
}

// StandingBody returns a body standing in the middle of the sensor's view,
// well away from the default engagement zone.
func StandingBody() Body {
	return BodyAt(72057594037928001, Point3D{X: 0.0, Y: -0.30, Z: 2.6})
}

// LeaningBody returns a body whose head sits inside the default engagement
// zone at (1.141569, -0.2308079, 2.408344).
func LeaningBody() Body {
	head := jointOffsets[Head]
	return BodyAt(72057594037928002, Point3D{
		X: 1.10 - head.X,
		Y: -0.20 - head.Y,
		Z: 2.45 - head.Z,
	})
}
