package speaker

import (
	"github.com/samber/lo"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
)

// Resolve applies the speaker map to every utterance, falling back to the raw
// diarization label for unmapped speakers. Pure and idempotent: resolving an
// already-resolved slice with the same map yields identical output.
func Resolve(utterances []model.Utterance, speakerMap map[string]string) []model.Utterance {
	return lo.Map(utterances, func(u model.Utterance, _ int) model.Utterance {
		if name, ok := speakerMap[u.Speaker]; ok && name != "" {
			u.SpeakerName = name
		} else {
			u.SpeakerName = u.Speaker
		}
		return u
	})
}

// ObservedLabels returns the distinct raw speaker labels in order of first
// appearance, which drives the naming prompts.
func ObservedLabels(utterances []model.Utterance) []string {
	return lo.Uniq(lo.Map(utterances, func(u model.Utterance, _ int) string {
		return u.Speaker
	}))
}

// UpdateMap merges edits over the existing map. Keys absent from edits keep
// their prior value; an edit with an empty value explicitly clears the key.
func UpdateMap(existing, edits map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(edits))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range edits {
		if v == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// ValidateEdits rejects edits that reference labels never observed in the
// transcript.
func ValidateEdits(edits map[string]string, utterances []model.Utterance) error {
	observed := ObservedLabels(utterances)
	for label := range edits {
		if !lo.Contains(observed, label) {
			return errors.Wrapf(errors.ErrUnknownSpeakerLabel, "%q", label)
		}
	}
	return nil
}

// Samples returns up to n utterances spoken under the given label, used to
// show context when assigning names.
func Samples(utterances []model.Utterance, label string, n int) []model.Utterance {
	matched := lo.Filter(utterances, func(u model.Utterance, _ int) bool {
		return u.Speaker == label
	})
	if len(matched) > n {
		matched = matched[:n]
	}
	return matched
}
