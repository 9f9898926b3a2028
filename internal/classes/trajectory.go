package classes

// Trajectory начальные данные, которые передаются при создании актора
type Trajectory uint8

const (
	TrajectoryNone Trajectory = iota
	TrajectoryLocation
	TrajectoryLocationAndRotation
)

// String возвращает имя траектории
func (t Trajectory) String() string {
	switch t {
	case TrajectoryNone:
		return "None"
	case TrajectoryLocation:
		return "Location"
	case TrajectoryLocationAndRotation:
		return "LocationAndRotation"
	default:
		return "Unknown"
	}
}

// HasLocation сообщает, передаётся ли позиция
func (t Trajectory) HasLocation() bool { return t != TrajectoryNone }

// HasRotation сообщает, передаётся ли поворот
func (t Trajectory) HasRotation() bool { return t == TrajectoryLocationAndRotation }

var spawnTrajectories = map[string]Trajectory{
	"TAGame.Ball_Breakout_TA":          TrajectoryLocationAndRotation,
	"TAGame.Ball_Haunted_TA":           TrajectoryLocationAndRotation,
	"TAGame.Ball_God_TA":               TrajectoryLocationAndRotation,
	"TAGame.Ball_TA":                   TrajectoryLocationAndRotation,
	"TAGame.Car_Season_TA":             TrajectoryLocationAndRotation,
	"TAGame.Car_TA":                    TrajectoryLocationAndRotation,
	"Engine.Pawn":                      TrajectoryLocationAndRotation,
	"TAGame.BreakOutActor_Platform_TA": TrajectoryNone,
	"TAGame.CrowdActor_TA":             TrajectoryNone,
	"TAGame.CrowdManager_TA":           TrajectoryNone,
	"TAGame.InMapScoreboard_TA":        TrajectoryNone,
	"TAGame.VehiclePickup_Boost_TA":    TrajectoryNone,
	"TAGame.VehiclePickup_TA":          TrajectoryNone,
	"TAGame.HauntedBallTrapTrigger_TA": TrajectoryNone,
	"TAGame.PlayerStart_Platform_TA":   TrajectoryNone,
	"TAGame.Cannon_TA":                 TrajectoryNone,
	"TAGame.SpecialPickup_Football_TA": TrajectoryLocation,
	"TAGame.CameraSettingsActor_TA":    TrajectoryLocation,
	"TAGame.GRI_TA":                    TrajectoryLocation,
	"TAGame.PRI_TA":                    TrajectoryLocation,
	"TAGame.Team_Soccar_TA":            TrajectoryLocation,
	"TAGame.GameEvent_Soccar_TA":       TrajectoryLocation,
	"Engine.Actor":                     TrajectoryLocation,
}

// Trajectory возвращает начальные данные создания для класса. Если класс
// не описан, используется ближайший описанный предок, иначе Location.
func (h *Hierarchy) Trajectory(classID int32) Trajectory {
	if t, ok := h.lookupTrajectory(classID); ok {
		return t
	}
	for _, ancestor := range h.Ancestors(classID) {
		if t, ok := h.lookupTrajectory(ancestor); ok {
			return t
		}
	}
	return TrajectoryLocation
}

func (h *Hierarchy) lookupTrajectory(classID int32) (Trajectory, bool) {
	name, ok := h.names[classID]
	if !ok {
		return TrajectoryNone, false
	}
	t, ok := spawnTrajectories[name]
	return t, ok
}
