package animation

import (
	"fmt"

	"github.com/spaghettifunk/anima-skeletal/engine/math"
)

// Pose is the per-joint transform snapshot of an instance.
type Pose struct {
	Pos        [MaxJoints]math.Vec3
	Rot        [MaxJoints]math.Quaternion
	JointCount int
}

// GetPose evaluates every channel of instance at its local time into pose.
// Rotations are not normalized. It panics if the instance was never
// initialized or animates more joints than a Pose holds.
func GetPose(instance *AnimatedInstance, pose *Pose) {
	if !instance.bound {
		panic(fmt.Sprintf("animation: GetPose on unbound instance %q", instance.Name))
	}
	if len(instance.Channels)%ChannelsPerJoint != 0 {
		panic(fmt.Sprintf("animation: instance %q has %d channels, not a multiple of %d",
			instance.Name, len(instance.Channels), ChannelsPerJoint))
	}

	totalJoints := instance.JointCount()
	if totalJoints > MaxJoints {
		panic(fmt.Sprintf("animation: instance %q animates %d joints, max is %d", instance.Name, totalJoints, MaxJoints))
	}

	t := instance.LocalTimeSeconds
	frameDelaySeconds := instance.frameDelaySeconds
	for joint := 0; joint < totalJoints; joint++ {
		ch := instance.Channels[joint*ChannelsPerJoint : (joint+1)*ChannelsPerJoint]
		pose.Pos[joint] = math.Vec3{
			X: ch[ComponentTranslationX].Evaluate(t, frameDelaySeconds),
			Y: ch[ComponentTranslationY].Evaluate(t, frameDelaySeconds),
			Z: ch[ComponentTranslationZ].Evaluate(t, frameDelaySeconds),
		}
		pose.Rot[joint] = math.Quaternion{
			X: ch[ComponentRotationX].Evaluate(t, frameDelaySeconds),
			Y: ch[ComponentRotationY].Evaluate(t, frameDelaySeconds),
			Z: ch[ComponentRotationZ].Evaluate(t, frameDelaySeconds),
			W: ch[ComponentRotationW].Evaluate(t, frameDelaySeconds),
		}
	}
	pose.JointCount = totalJoints
}

// InterpolatePose blends two poses joint by joint: positions linearly and
// rotations spherically. t=0 reproduces last and t=1 reproduces curr; t is
// not clamped.
func InterpolatePose(out, last, curr *Pose, t float32) {
	jointCount := curr.JointCount
	if last.JointCount > jointCount {
		jointCount = last.JointCount
	}
	for joint := 0; joint < jointCount; joint++ {
		out.Pos[joint] = last.Pos[joint].Lerp(curr.Pos[joint], t)
		out.Rot[joint] = last.Rot[joint].Slerp(curr.Rot[joint], t)
	}
	out.JointCount = jointCount
}
