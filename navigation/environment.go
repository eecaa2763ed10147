package navigation

import (
	"math"
	"strconv"

	"github.com/bytearena/ecs"
	uuid "github.com/satori/go.uuid"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nameisalii/4wel/common/utils/vector"
	"github.com/nameisalii/4wel/kinematics"
)

// Info carries per-step diagnostics for the caller's logging; the
// environment never reads it back.
type Info map[string]interface{}

// clearanceRelaxations bounds the reset fallback: each relaxation
// halves the placement clearances before giving up with a
// ConfigurationError.
const clearanceRelaxations = 3

// Environment drives one episode of the navigation task: one or more
// four-wheel-steering robots, each with a fixed target, advanced
// synchronously one action per robot per step. The environment owns
// its episode and random stream exclusively; it is not safe for
// concurrent use, and performs no I/O.
type Environment struct {
	config Config
	model  kinematics.Model
	policy RewardPolicy

	manager         *ecs.Manager
	stateComponent  *ecs.Component
	targetComponent *ecs.Component
	statusComponent *ecs.Component

	robotsView *ecs.View

	// robotIDs keeps the per-index entity ids; observations, actions
	// and peer slots all follow this order for the whole episode.
	robotIDs []ecs.EntityID

	episodeID  uuid.UUID
	stepCount  int
	started    bool
	terminated bool
	truncated  bool

	rng *xrand.Rand
}

// robotAspect is the kinematic state component of one robot entity.
type robotAspect struct {
	state kinematics.State
}

// targetAspect is the per-episode fixed goal of one robot.
type targetAspect struct {
	position vector.Vector2
}

// statusAspect tracks arrival and collision flags for one robot.
type statusAspect struct {
	success  bool
	collided bool
	distance float64
}

func New(config Config) (*Environment, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	manager := ecs.NewManager()

	env := &Environment{
		config: config,
		model:  kinematics.NewModel(config.Robot),
		policy: NewRewardPolicy(config),

		manager:         manager,
		stateComponent:  manager.NewComponent(),
		targetComponent: manager.NewComponent(),
		statusComponent: manager.NewComponent(),

		rng: xrand.New(xrand.NewSource(0)),
	}

	env.robotsView = manager.CreateView(
		env.stateComponent,
		env.targetComponent,
		env.statusComponent,
	)

	return env, nil
}

func (env *Environment) Config() Config {
	return env.config
}

func (env *Environment) NumRobots() int {
	return env.config.NumRobots
}

func (env *Environment) StepCount() int {
	return env.stepCount
}

func (env *Environment) EpisodeID() uuid.UUID {
	return env.episodeID
}

func (env *Environment) ObservationSpec() SpaceSpec {
	return observationSpec(env.config)
}

func (env *Environment) ActionSpec() SpaceSpec {
	return actionSpec(env.config)
}

// Reset discards the previous episode, reseeds the random stream and
// samples fresh start poses and targets. Identical seeds reproduce
// identical episodes.
func (env *Environment) Reset(seed uint64) (*mat.VecDense, Info, error) {
	env.rng = xrand.New(xrand.NewSource(seed))

	starts, headings, targets, err := env.samplePlacements()
	if err != nil {
		return nil, nil, err
	}

	env.disposeRobots()

	env.robotIDs = make([]ecs.EntityID, env.config.NumRobots)
	for i := 0; i < env.config.NumRobots; i++ {
		entity := env.manager.NewEntity().
			AddComponent(env.stateComponent, &robotAspect{
				state: kinematics.MakeState(starts[i].GetX(), starts[i].GetY(), headings[i]),
			}).
			AddComponent(env.targetComponent, &targetAspect{
				position: targets[i],
			}).
			AddComponent(env.statusComponent, &statusAspect{
				distance: starts[i].Dist(targets[i]),
			})

		env.robotIDs[i] = entity.GetID()
	}

	env.episodeID = uuid.NewV4()
	env.stepCount = 0
	env.started = true
	env.terminated = false
	env.truncated = false

	return buildObservation(env.robotStates(), env.targets()), env.makeInfo(nil), nil
}

// Step applies one action per robot and advances the episode by one
// time step. The action is the concatenation of (curvature, velocity)
// pairs in robot index order. A shape mismatch fails with an
// InvalidActionError before any state is touched.
func (env *Environment) Step(action []float64) (*mat.VecDense, float64, bool, bool, Info, error) {
	if !env.started {
		return nil, 0, false, false, nil, NewInvalidActionError("Step called before Reset")
	}

	if env.terminated || env.truncated {
		return nil, 0, env.terminated, env.truncated, nil,
			NewInvalidActionError("episode is over; call Reset")
	}

	expected := ActionDim(env.config.NumRobots)
	if len(action) != expected {
		return nil, 0, false, false, nil, NewInvalidActionError("action shape mismatch").
			SetContext("expected", strconv.Itoa(expected)).
			SetContext("got", strconv.Itoa(len(action)))
	}

	// advance every robot before any reward is scored, so cross-robot
	// terms always see post-step states
	prev := env.robotStates()
	next := make([]kinematics.State, len(prev))
	for i, state := range prev {
		control := kinematics.Control{
			Curvature: action[2*i],
			Velocity:  action[2*i+1],
		}
		next[i] = env.model.Advance(state, control, env.config.Dt)
	}

	for i, id := range env.robotIDs {
		env.robotAspectAt(id).state = next[i]
	}

	env.stepCount++

	targets := env.targets()

	var report separationReport
	if env.config.NumRobots > 1 {
		scanRadius := math.Max(env.config.SafetyRadius, env.config.ComfortMargin)
		report = scanSeparations(next, scanRadius, env.policy)
	}

	total := report.penalty
	allSuccess := true
	anyCollision := false

	for i, id := range env.robotIDs {
		reward, success := env.policy.Score(prev[i], next[i], targets[i])
		total += reward

		status := env.statusAspectAt(id)
		status.success = success
		status.distance = next[i].Position().Dist(targets[i])
		if env.config.NumRobots > 1 {
			status.collided = report.collided[i]
			anyCollision = anyCollision || status.collided
		}

		allSuccess = allSuccess && success
	}

	if env.config.NumRobots > 1 && report.minSeparation > env.config.ComfortMargin {
		total += env.config.Reward.Comfort
	}

	total = env.policy.clampEpisodeReward(total)

	// A collision ends the episode as a failure; removing single
	// robots instead would change the observation shape mid-episode.
	env.terminated = allSuccess || anyCollision
	env.truncated = !env.terminated && env.stepCount >= env.config.MaxEpisodeSteps

	observation := buildObservation(next, targets)
	info := env.makeInfo(&allSuccess)

	return observation, total, env.terminated, env.truncated, info, nil
}

func (env *Environment) makeInfo(allSuccess *bool) Info {
	distances := make([]float64, len(env.robotIDs))
	collisions := make([]bool, len(env.robotIDs))

	for i, id := range env.robotIDs {
		status := env.statusAspectAt(id)
		distances[i] = status.distance
		collisions[i] = status.collided
	}

	info := Info{
		"episode":   env.episodeID.String(),
		"step":      env.stepCount,
		"distances": distances,
		"targets":   env.targets(),
	}

	if allSuccess != nil {
		info["success"] = *allSuccess
	}

	if env.config.NumRobots > 1 {
		info["collisions"] = collisions
	}

	return info
}

// samplePlacements draws start poses and targets by bounded rejection
// sampling: robot starts keep MinRobotClearance between each other,
// targets keep MinTargetClearance from earlier targets and from their
// own robot's start. When the area is too crowded the clearances are
// halved a fixed number of times before failing.
func (env *Environment) samplePlacements() (starts []vector.Vector2, headings []float64, targets []vector.Vector2, err error) {
	robotClearance := env.config.MinRobotClearance
	targetClearance := env.config.MinTargetClearance

	for relax := 0; relax <= clearanceRelaxations; relax++ {
		starts, headings, targets, err = env.tryPlacement(robotClearance, targetClearance)
		if err == nil {
			return starts, headings, targets, nil
		}

		robotClearance /= 2
		targetClearance /= 2
	}

	return nil, nil, nil, NewConfigurationError("could not place robots inside the sampling area").
		SetContext("numRobots", strconv.Itoa(env.config.NumRobots)).
		With(err)
}

func (env *Environment) tryPlacement(robotClearance float64, targetClearance float64) ([]vector.Vector2, []float64, []vector.Vector2, error) {
	position := distuv.Uniform{
		Min: -env.config.InitialRange,
		Max: env.config.InitialRange,
		Src: env.rng,
	}
	heading := distuv.Uniform{
		Min: -math.Pi,
		Max: math.Pi,
		Src: env.rng,
	}

	starts := make([]vector.Vector2, 0, env.config.NumRobots)
	headings := make([]float64, 0, env.config.NumRobots)
	targets := make([]vector.Vector2, 0, env.config.NumRobots)

	for i := 0; i < env.config.NumRobots; i++ {
		start, ok := samplePoint(position, starts, robotClearance, env.config.MaxSampleAttempts)
		if !ok {
			return nil, nil, nil, NewConfigurationError("no clear start pose found").
				SetContext("robot", strconv.Itoa(i))
		}

		starts = append(starts, start)
		headings = append(headings, heading.Rand())
	}

	for i := 0; i < env.config.NumRobots; i++ {
		keepClear := append([]vector.Vector2{starts[i]}, targets...)

		target, ok := samplePoint(position, keepClear, targetClearance, env.config.MaxSampleAttempts)
		if !ok {
			return nil, nil, nil, NewConfigurationError("no clear target found").
				SetContext("robot", strconv.Itoa(i)).
				SetContext("start", starts[i].String())
		}

		targets = append(targets, target)
	}

	return starts, headings, targets, nil
}

// samplePoint draws points until one clears every anchor, bounded by
// maxAttempts.
func samplePoint(position distuv.Uniform, anchors []vector.Vector2, clearance float64, maxAttempts int) (vector.Vector2, bool) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := vector.MakeVector2(position.Rand(), position.Rand())

		clear := true
		for _, anchor := range anchors {
			if candidate.Dist(anchor) < clearance {
				clear = false
				break
			}
		}

		if clear {
			return candidate, true
		}
	}

	return vector.MakeNullVector2(), false
}

func (env *Environment) disposeRobots() {
	stale := make([]*ecs.Entity, 0)
	for _, entityresult := range env.robotsView.Get() {
		stale = append(stale, entityresult.Entity)
	}

	env.manager.DisposeEntities(stale...)
}

func (env *Environment) robotStates() []kinematics.State {
	states := make([]kinematics.State, len(env.robotIDs))
	for i, id := range env.robotIDs {
		states[i] = env.robotAspectAt(id).state
	}
	return states
}

func (env *Environment) targets() []vector.Vector2 {
	targets := make([]vector.Vector2, len(env.robotIDs))
	for i, id := range env.robotIDs {
		targets[i] = env.targetAspectAt(id).position
	}
	return targets
}

func (env *Environment) robotAspectAt(id ecs.EntityID) *robotAspect {
	entityresult := env.manager.GetEntityByID(id, env.stateComponent)
	return entityresult.Components[env.stateComponent].(*robotAspect)
}

func (env *Environment) targetAspectAt(id ecs.EntityID) *targetAspect {
	entityresult := env.manager.GetEntityByID(id, env.targetComponent)
	return entityresult.Components[env.targetComponent].(*targetAspect)
}

func (env *Environment) statusAspectAt(id ecs.EntityID) *statusAspect {
	entityresult := env.manager.GetEntityByID(id, env.statusComponent)
	return entityresult.Components[env.statusComponent].(*statusAspect)
}
