// Package runner drives batches of independent navigation
// environments. Each environment owns its episode and random stream;
// nothing is shared between the goroutines stepping them.
package runner

import (
	"fmt"

	notify "github.com/bitly/go-notify"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/nameisalii/4wel/common/utils"
	"github.com/nameisalii/4wel/navigation"
)

// TopicEpisodeDone carries *EpisodeResult values, published as each
// episode finishes.
const TopicEpisodeDone = "episode:done"

// Policy maps an observation to a flat action vector. A Policy used
// in a batch is called from several goroutines and must not carry
// mutable state.
type Policy interface {
	Act(observation *mat.VecDense) []float64
}

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc func(observation *mat.VecDense) []float64

func (f PolicyFunc) Act(observation *mat.VecDense) []float64 {
	return f(observation)
}

// EpisodeResult summarizes one finished episode.
type EpisodeResult struct {
	Worker    int
	Episode   int
	EpisodeID string
	Seed      uint64
	Steps     int
	Return    float64
	Success   bool
	Truncated bool
}

// Batch runs the same configuration across several workers. Worker i
// derives its episode seeds from Seeds[i], so a batch is reproducible
// end to end.
type Batch struct {
	config navigation.Config
	seeds  []uint64
}

func NewBatch(config navigation.Config, seeds []uint64) (*Batch, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if len(seeds) == 0 {
		return nil, navigation.NewConfigurationError("a batch needs at least one worker seed")
	}

	return &Batch{config: config, seeds: seeds}, nil
}

// Run plays episodesPerWorker episodes on every worker in parallel
// and returns the results in (worker, episode) order.
func (batch *Batch) Run(policy Policy, episodesPerWorker int) ([]EpisodeResult, error) {
	if episodesPerWorker < 1 {
		return nil, navigation.NewConfigurationError("episodesPerWorker must be at least 1")
	}

	results := make([]EpisodeResult, len(batch.seeds)*episodesPerWorker)

	var group errgroup.Group

	for worker := range batch.seeds {
		worker := worker

		group.Go(func() error {
			env, err := navigation.New(batch.config)
			if err != nil {
				return err
			}

			for episode := 0; episode < episodesPerWorker; episode++ {
				// strided so adjacent worker seeds never replay each
				// other's episodes
				seed := batch.seeds[worker]*uint64(episodesPerWorker) + uint64(episode)

				result, err := playEpisode(env, policy, seed)
				if err != nil {
					return err
				}

				result.Worker = worker
				result.Episode = episode

				results[worker*episodesPerWorker+episode] = *result
				notify.Post(TopicEpisodeDone, result)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func playEpisode(env *navigation.Environment, policy Policy, seed uint64) (*EpisodeResult, error) {
	observation, _, err := env.Reset(seed)
	if err != nil {
		return nil, err
	}

	result := &EpisodeResult{
		EpisodeID: env.EpisodeID().String(),
		Seed:      seed,
	}

	for {
		next, reward, terminated, truncated, info, err := env.Step(policy.Act(observation))
		if err != nil {
			return nil, err
		}

		result.Return += reward
		result.Steps++
		observation = next

		if terminated || truncated {
			result.Success, _ = info["success"].(bool)
			result.Truncated = truncated

			utils.DebugWithContext("runner", "episode finished", utils.Context{
				"episode": result.EpisodeID,
				"steps":   result.Steps,
				"return":  fmt.Sprintf("%.2f", result.Return),
				"success": result.Success,
				"targets": info["targets"],
			})

			return result, nil
		}
	}
}
