package coach

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/2beens/fitdash/internal/activities"
)

const contextActivities = 10

// BuildContext describes the most recent activities, one line each. Activities are expected newest first.
func BuildContext(recent []activities.Activity) string {
	if len(recent) > contextActivities {
		recent = recent[:contextActivities]
	}

	lines := make([]string, 0, len(recent))
	for _, a := range recent {
		line := fmt.Sprintf(
			"Completed %s labelled %s on %s with distance %s, at a pace of %s.",
			a.Type, a.Name, a.Date, a.DistanceF, a.Pace,
		)
		if a.HasHeartrate {
			line += fmt.Sprintf(
				" Average heartrate was %sbpm and max heartrate was %sbpm.",
				formatHeartrate(a.AverageHeartrate), formatHeartrate(a.MaxHeartrate),
			)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func formatHeartrate(v *float64) string {
	if v == nil {
		return activities.NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func prompt(context, question string) string {
	return fmt.Sprintf("Context: %s\n\n---\n\nQuestion: %s\n\n---\n\nResponse: ", context, question)
}
