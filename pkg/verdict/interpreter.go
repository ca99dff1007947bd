// Package verdict maps a detection response onto a display-ready render model.
package verdict

import (
	"math"
	"strconv"

	"rickshaw-client/internal/dto"
)

const (
	KindVerdict = "verdict"
	KindText    = "text"
	KindNotice  = "notice"
	KindFailure = "failure"
)

const (
	HeadlinePositive   = "Rickshaw Detected!"
	HeadlineNegative   = "No Rickshaw Detected"
	NegativeLine       = "This doesn't appear to be a rickshaw"
	TextHeading        = "Detected Number Plate"
	DefaultNotice      = "Analysis completed"
	GenericFailureText = "Analysis failed"
)

// Interpret builds the render model. A nil response renders nothing.
func Interpret(resp *dto.AnalysisResponse) *dto.RenderModel {
	if resp == nil {
		return nil
	}
	if !resp.Success {
		return &dto.RenderModel{
			Kind:    KindFailure,
			Failure: &dto.FailureView{Message: failureMessage(resp)},
		}
	}

	model := &dto.RenderModel{Labels: labels(resp)}

	switch {
	case resp.IsRickshaw != nil:
		model.Kind = KindVerdict
		model.Verdict = verdictView(*resp.IsRickshaw, resp.RickshawConfidence)
	case resp.Data != "":
		model.Kind = KindText
		model.Text = &dto.TextView{Heading: TextHeading, Value: resp.Data, Note: resp.Message}
	default:
		model.Kind = KindNotice
		model.Notice = resp.Message
		if model.Notice == "" && len(model.Labels) == 0 {
			model.Notice = DefaultNotice
		}
	}
	return model
}

func verdictView(positive bool, confidence *float64) *dto.VerdictView {
	if !positive {
		return &dto.VerdictView{Headline: HeadlineNegative, Explanation: NegativeLine}
	}
	v := &dto.VerdictView{Positive: true, Headline: HeadlinePositive}
	if confidence != nil && *confidence > 0 {
		v.Confidence = FormatPercent(*confidence, 2)
	}
	return v
}

func labels(resp *dto.AnalysisResponse) []dto.LabelView {
	if len(resp.Labels) == 0 {
		return nil
	}
	out := make([]dto.LabelView, 0, len(resp.Labels))
	for _, name := range resp.Labels {
		lv := dto.LabelView{Name: name}
		if c, ok := resp.LabelConfidence[name]; ok {
			lv.Confidence = strconv.FormatFloat(c, 'f', 1, 64) + "%"
		}
		out = append(out, lv)
	}
	return out
}

func failureMessage(resp *dto.AnalysisResponse) string {
	for _, s := range []string{resp.Data, resp.Message, resp.Error} {
		if s != "" {
			return s
		}
	}
	return GenericFailureText
}

// FormatPercent rounds to the given decimals and drops trailing zeros: 97.5 -> "97.5%".
func FormatPercent(v float64, decimals int) string {
	p := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', -1, 64) + "%"
}
