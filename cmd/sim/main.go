package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	notify "github.com/bitly/go-notify"
	"github.com/ttacon/chalk"
	bettererrors "github.com/xtuc/better-errors"
	"gonum.org/v1/gonum/mat"

	"github.com/nameisalii/4wel/common/utils"
	"github.com/nameisalii/4wel/kinematics"
	"github.com/nameisalii/4wel/navigation"
	"github.com/nameisalii/4wel/runner"
)

func main() {
	configpath := flag.String("config", "", "Path to a JSON simulation config; defaults apply when omitted")
	episodes := flag.Int("episodes", 10, "Episodes to play per worker")
	workers := flag.Int("workers", 1, "Parallel environment instances")
	robots := flag.Int("robots", 0, "Override the configured robot count")
	seed := flag.Uint64("seed", 1, "Base seed; worker i uses seed+i")
	flag.Parse()

	config := navigation.DefaultConfig()

	if *configpath != "" {
		loaded, err := navigation.LoadConfig(*configpath)
		if err != nil {
			utils.FailWith(err)
		}
		config = loaded
	}

	if *robots > 0 {
		config.NumRobots = *robots
	}

	utils.Assert(*workers > 0, "workers must be positive")

	// interruption just abandons the rollout; there is nothing to
	// tear down
	hassigtermed := make(chan os.Signal, 2)
	signal.Notify(hassigtermed, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-hassigtermed
		utils.WarnWith(bettererrors.New("interrupted, abandoning the rollout"))
		os.Exit(1)
	}()

	seeds := make([]uint64, *workers)
	for i := range seeds {
		seeds[i] = *seed + uint64(i)
	}

	batch, err := runner.NewBatch(config, seeds)
	if err != nil {
		utils.FailWith(err)
	}

	// print each episode as it finishes rather than after the batch
	events := make(chan interface{})
	notify.Start(runner.TopicEpisodeDone, events)

	drained := make(chan struct{})
	go func() {
		for event := range events {
			printEpisode(event.(*runner.EpisodeResult))
		}
		close(drained)
	}()

	results, err := batch.Run(steerToTarget(config), *episodes)
	if err != nil {
		utils.FailWith(err)
	}

	utils.Check(notify.Stop(runner.TopicEpisodeDone, events), "could not unsubscribe from episode events")
	close(events)
	<-drained

	printSummary(results)
}

// steerToTarget is a scripted stand-in for a learned policy: point
// the curvature at the target bearing and drive at a speed
// proportional to the remaining distance.
func steerToTarget(config navigation.Config) runner.Policy {
	perRobot := navigation.PerRobotObservationDim(config.NumRobots)

	return runner.PolicyFunc(func(observation *mat.VecDense) []float64 {
		action := make([]float64, navigation.ActionDim(config.NumRobots))

		for i := 0; i < config.NumRobots; i++ {
			offset := i * perRobot

			theta := observation.AtVec(offset + 2)
			dx := observation.AtVec(offset + 8)
			dy := observation.AtVec(offset + 9)

			bearing := kinematics.WrapHeading(math.Atan2(dy, dx) - theta)
			distance := math.Hypot(dx, dy)

			velocity := distance
			if math.Abs(bearing) > math.Pi/2 {
				// roughly facing away: creep while the wheels come
				// around
				velocity = 0.3
			}

			action[2*i] = 2.0 * bearing
			action[2*i+1] = velocity
		}

		return action
	})
}

func printEpisode(result *runner.EpisodeResult) {
	line := fmt.Sprintf(
		"worker %d episode %d [%s]: %d steps, return %.2f",
		result.Worker, result.Episode, result.EpisodeID,
		result.Steps, result.Return,
	)

	if result.Success {
		fmt.Println(chalk.Green.Color(line + " ✓"))
	} else {
		fmt.Println(chalk.Red.Color(line + " ✗"))
	}
}

func printSummary(results []runner.EpisodeResult) {
	successes := 0
	totalReturn := 0.0

	for _, result := range results {
		if result.Success {
			successes++
		}
		totalReturn += result.Return
	}

	fmt.Println()
	fmt.Printf(
		"%d/%d episodes reached their targets; mean return %.2f\n",
		successes, len(results), totalReturn/float64(len(results)),
	)
}
