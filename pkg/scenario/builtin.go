package scenario

import "github.com/thesyncim/shiftclick/pkg/actions"

// TargetButton and ResultSelector are the elements of the click page.
const (
	TargetButton   = "#testButton"
	ResultSelector = "#result"
)

func release(v bool) *bool {
	return &v
}

// BuiltinScenarios returns the standard shift-click checks:
//   - shift-click: Shift held across separate dispatches around an explicit click
//   - normal-click: an explicit click with default release
//   - bare-click-strict / bare-click-contextual: a bare click while Shift is
//     held from an earlier unreleased batch, under each policy
//   - bare-click-engine: the same gesture under the runner's engine policy
func BuiltinScenarios() []Scenario {
	return []Scenario{
		{
			Name: "shift-click",
			Steps: []Step{
				{Action: StepKeyDown, Key: "shift"},
				{Action: StepFlush, Release: release(false)},
				{Action: StepPointerDown, Target: TargetButton},
				{Action: StepPointerUp, Target: TargetButton},
				{Action: StepFlush, Release: release(false)},
				{Action: StepKeyUp, Key: "shift"},
				{Action: StepFlush, Release: release(true)},
				{Action: StepExpect, Classification: actions.ClassShiftClick, Text: actions.TextShiftClick},
			},
		},
		{
			Name: "normal-click",
			Steps: []Step{
				{Action: StepPointerDown, Target: TargetButton},
				{Action: StepPointerUp, Target: TargetButton},
				{Action: StepFlush, Release: release(true)},
				{Action: StepExpect, Classification: actions.ClassNormalClick, Text: actions.TextNormalClick},
			},
		},
		{
			Name:   "bare-click-strict",
			Policy: "strict",
			Steps:  bareClickSteps(actions.ClassNormalClick, actions.TextNormalClick),
		},
		{
			Name:   "bare-click-contextual",
			Policy: "contextual",
			Steps:  bareClickSteps(actions.ClassShiftClick, actions.TextShiftClick),
		},
		{
			Name: "bare-click-engine",
			Steps: []Step{
				{Action: StepKeyDown, Key: "shift"},
				{Action: StepFlush, Release: release(false)},
				{Action: StepClick, Target: TargetButton},
				{Action: StepKeyUp, Key: "shift"},
				{Action: StepFlush, Release: release(true)},
				{Action: StepExpect, Derive: true},
			},
		},
	}
}

func bareClickSteps(class, text string) []Step {
	return []Step{
		{Action: StepKeyDown, Key: "shift"},
		{Action: StepFlush, Release: release(false)},
		{Action: StepClick, Target: TargetButton},
		{Action: StepExpect, Classification: class, Text: text},
		{Action: StepExpect, Derive: true},
		{Action: StepRelease},
	}
}
