package data

// NamedCommandDataset pairs a command dataset with its directory.
type NamedCommandDataset struct {
	Path    string
	Dataset CommandDataset
}

type NamedOrdinalDataset struct {
	Path    string
	Dataset OrdinalDataset
}

// AmplifyCommands appends every sibling's positives and the noise corpus to
// each dataset's negatives. Phrases that are one of the trainee's own
// positives are left out, including ones listed in its own false set.
// Inputs are not modified.
func AmplifyCommands(datasets []NamedCommandDataset, noise []string) []NamedCommandDataset {
	amplified := make([]NamedCommandDataset, len(datasets))

	for i, trainee := range datasets {
		own := make(map[string]bool, len(trainee.Dataset.True))
		for _, sample := range trainee.Dataset.True {
			own[sample] = true
		}

		negatives := appendExcept(nil, trainee.Dataset.False, own)
		for j, other := range datasets {
			if i == j {
				continue
			}
			negatives = appendExcept(negatives, other.Dataset.True, own)
		}
		negatives = appendExcept(negatives, noise, own)

		amplified[i] = NamedCommandDataset{
			Path: trainee.Path,
			Dataset: CommandDataset{
				True:  append([]string(nil), trainee.Dataset.True...),
				False: negatives,
			},
		}
	}

	return amplified
}

func appendExcept(dst, src []string, skip map[string]bool) []string {
	for _, sample := range src {
		if skip[sample] {
			continue
		}
		dst = append(dst, sample)
	}
	return dst
}

// AmplifyOrdinal is the identity: ordinal levels are independent scales
// and receive no cross-dataset negatives.
func AmplifyOrdinal(datasets []NamedOrdinalDataset) []NamedOrdinalDataset {
	return datasets
}
