// Package main contains a command to run detection consensus over recorded
// predictions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/visionfuse/fusion/detection"
	"github.com/visionfuse/fusion/utils"
	"github.com/visionfuse/fusion/workflow"
)

var logger = golog.NewDevelopmentLogger("fusion")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	PredictionsFile string  `flag:"0,required,usage=JSON file holding one batch of detections per source"`
	ConfigFile      string  `flag:"config,usage=JSON file holding the consensus block attributes"`
	MinScore        float64 `flag:"min-score,usage=drop detections scored below this before consensus"`
	MinArea         float64 `flag:"min-area,usage=drop detections with boxes smaller than this before consensus"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	sources, err := readPredictions(argsParsed.PredictionsFile)
	if err != nil {
		return err
	}
	sources = prefilter(sources, argsParsed.MinScore, argsParsed.MinArea)

	am, err := readAttributes(argsParsed.ConfigFile, len(sources))
	if err != nil {
		return err
	}
	block, err := workflow.NewConsensusBlock(am, logger)
	if err != nil {
		return err
	}

	results, err := block.Run(ctx, sources, nil)
	if err != nil {
		return err
	}
	for idx, result := range results {
		logger.Infow("consensus verdict",
			"image", idx,
			"parent_id", result.ParentID,
			"object_present", result.ObjectPresent,
			"presence_confidence", result.PresenceConfidence,
		)
		for _, d := range result.Predictions {
			logger.Infof("image %d: %s", idx, d)
		}
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// readPredictions loads one batch of detections per source from a JSON
// file shaped [sources][images][detections].
func readPredictions(path string) ([]detection.Batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sources []detection.Batch
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil, errors.Wrapf(err, "cannot parse predictions file %q", path)
	}
	return sources, nil
}

// prefilter drops low scoring or small detections before consensus runs.
func prefilter(sources []detection.Batch, minScore, minArea float64) []detection.Batch {
	var filters []detection.Postprocessor
	if minScore > 0 {
		filters = append(filters, detection.NewScoreFilter(minScore))
	}
	if minArea > 0 {
		filters = append(filters, detection.NewAreaFilter(minArea))
	}
	if len(filters) == 0 {
		return sources
	}
	for _, batch := range sources {
		for idx, dets := range batch {
			for _, keep := range filters {
				dets = keep(dets)
			}
			batch[idx] = dets
		}
	}
	return sources
}

// readAttributes loads the consensus block attributes. Without a config
// file the block requires every source to agree.
func readAttributes(path string, sourceCount int) (utils.AttributeMap, error) {
	if path == "" {
		return utils.AttributeMap{"required_votes": sourceCount}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var am utils.AttributeMap
	if err := json.Unmarshal(raw, &am); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %q", path)
	}
	if !am.Has("required_votes") {
		return nil, errors.Errorf("config file %q must set required_votes", path)
	}
	return am, nil
}
