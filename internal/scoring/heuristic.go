package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

// tldQuality reflects resale and recognition value per TLD. Unlisted
// TLDs score 0.5.
var tldQuality = map[string]float64{
	"com": 1.0,
	"co":  0.9,
	"io":  0.85,
	"dev": 0.8,
	"app": 0.8,
	"me":  0.75,
	"net": 0.7,
	"org": 0.7,
}

var consonantCluster = regexp.MustCompile(`[bcdfghjklmnpqrstvwxyz]{4,}`)

// QuickEvaluate scores a domain without a model call. It backstops
// model evaluation: any candidate the model skips or a failed chunk
// drops still gets a deterministic score.
func QuickEvaluate(name string) domain.Evaluation {
	label, _, _ := strings.Cut(name, ".")
	tld := domain.TLDOf(name)

	lengthScore := 1.0
	if len(label) > 8 {
		lengthScore = math.Max(0.3, 1.0-float64(len(label)-8)*0.1)
	}

	tldScore, ok := tldQuality[tld]
	if !ok {
		tldScore = 0.5
	}

	pronounceable := !consonantCluster.MatchString(strings.ToLower(label))
	hasDigits := strings.ContainsAny(label, "0123456789")
	hasHyphens := strings.Contains(label, "-")

	score := (lengthScore + tldScore) / 2
	if !pronounceable {
		score *= 0.7
	}
	if hasDigits {
		score *= 0.8
	}
	if hasHyphens {
		score *= 0.85
	}
	score = math.Round(score*100) / 100

	var flags []string
	if hasDigits {
		flags = append(flags, "contains numbers")
	}
	if hasHyphens {
		flags = append(flags, "contains hyphens")
	}
	if !pronounceable {
		flags = append(flags, "hard to pronounce")
	}

	return domain.Evaluation{
		Domain:        name,
		Score:         score,
		WorthChecking: score > domain.DefaultMinGoodScore,
		Pronounceable: pronounceable,
		Memorable:     len(label) <= 12,
		BrandFit:      score > 0.5,
		EmailFriendly: !hasDigits && !hasHyphens,
		Flags:         flags,
		Notes:         fmt.Sprintf("Quick eval: length=%d, tld=.%s", len(label), tld),
	}
}
