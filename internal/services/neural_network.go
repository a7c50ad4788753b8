package services

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/jltdev15/crime-analytics/internal/models"
)

const (
	// modelWindow is the number of trailing months fed to the model.
	modelWindow = 6
	// modelHidden is the size of the single hidden layer.
	modelHidden = 8

	trainingRate      = 0.01
	trainingEpochs    = 1000
	trainingTargetMSE = 0.05

	// minTrainingSamples is the minimum number of raw sliding-window
	// pairs required before training is attempted at all;
	// minValidSamples is the minimum left after filtering malformed
	// ones. Below either threshold the model stays untrained and every
	// forecast takes the statistical path.
	minTrainingSamples = 5
	minValidSamples    = 3
)

// sequenceModel is a compact sequence predictor: a window of the last
// six monthly counts through one tanh hidden layer to a single sigmoid
// output, trained by backpropagation over sliding-window pairs built
// from the citywide monthly series. Once trained it is immutable;
// retraining builds a new model and swaps it in wholesale.
type sequenceModel struct {
	wIn     [modelHidden][modelWindow]float64
	bHidden [modelHidden]float64
	wOut    [modelHidden]float64
	bOut    float64

	// Output scaling observed at training time.
	outMin, outMax float64

	samples    int
	iterations int
	mse        float64
	trainedAt  time.Time
}

type trainingSample struct {
	input  []float64
	target float64
}

// buildTrainingSamples converts the citywide monthly series into
// (trailing 6 counts -> next count) pairs.
func buildTrainingSamples(series []monthPoint) []trainingSample {
	var samples []trainingSample
	for i := modelWindow; i < len(series); i++ {
		input := make([]float64, modelWindow)
		for j := 0; j < modelWindow; j++ {
			input[j] = float64(series[i-modelWindow+j].count)
		}
		samples = append(samples, trainingSample{input: input, target: float64(series[i].count)})
	}
	return samples
}

// trainSequenceModel trains a fresh model over the citywide series.
// Returns nil when there is not enough data to train; that is not an
// error, just the designed statistical-fallback state.
func trainSequenceModel(series []monthPoint) *sequenceModel {
	samples := buildTrainingSamples(series)
	if len(samples) < minTrainingSamples {
		return nil
	}

	valid := samples[:0:0]
	for _, s := range samples {
		ok := len(s.input) == modelWindow && !invalid(s.target)
		for _, x := range s.input {
			if invalid(x) {
				ok = false
				break
			}
		}
		if ok {
			valid = append(valid, s)
		}
	}
	if len(valid) < minValidSamples {
		return nil
	}

	counts := seriesCounts(series)
	outMin, outMax := counts[0], counts[0]
	for _, c := range counts {
		outMin = math.Min(outMin, c)
		outMax = math.Max(outMax, c)
	}

	m := &sequenceModel{outMin: outMin, outMax: outMax, samples: len(valid)}

	// Deterministic initialization keeps retraining reproducible for
	// identical input data.
	rng := rand.New(rand.NewSource(42))
	for h := 0; h < modelHidden; h++ {
		for i := 0; i < modelWindow; i++ {
			m.wIn[h][i] = rng.Float64() - 0.5
		}
		m.bHidden[h] = rng.Float64() - 0.5
		m.wOut[h] = rng.Float64() - 0.5
	}
	m.bOut = rng.Float64() - 0.5

	type normSample struct {
		input  []float64
		target float64
	}
	data := make([]normSample, len(valid))
	for i, s := range valid {
		data[i] = normSample{
			input:  normalizeWindow(s.input),
			target: normalizeValue(s.target, outMin, outMax),
		}
	}

	order := rng.Perm(len(data))
	for epoch := 0; epoch < trainingEpochs; epoch++ {
		sumSq := 0.0
		for _, idx := range order {
			s := data[idx]

			var hidden [modelHidden]float64
			for h := 0; h < modelHidden; h++ {
				sum := m.bHidden[h]
				for i := 0; i < modelWindow; i++ {
					sum += m.wIn[h][i] * s.input[i]
				}
				hidden[h] = math.Tanh(sum)
			}
			out := m.bOut
			for h := 0; h < modelHidden; h++ {
				out += m.wOut[h] * hidden[h]
			}
			y := sigmoid(out)

			err := y - s.target
			sumSq += err * err

			dOut := err * y * (1 - y)
			for h := 0; h < modelHidden; h++ {
				dHidden := dOut * m.wOut[h] * (1 - hidden[h]*hidden[h])
				m.wOut[h] -= trainingRate * dOut * hidden[h]
				for i := 0; i < modelWindow; i++ {
					m.wIn[h][i] -= trainingRate * dHidden * s.input[i]
				}
				m.bHidden[h] -= trainingRate * dHidden
			}
			m.bOut -= trainingRate * dOut
		}

		m.mse = sumSq / float64(len(data))
		m.iterations = epoch + 1
		if m.mse <= trainingTargetMSE {
			break
		}
	}

	m.trainedAt = time.Now().UTC()
	return m
}

// predict runs one forward pass over a window of raw monthly counts and
// returns the denormalized next-month estimate. May return NaN when the
// arithmetic degenerates; callers fall back.
func (m *sequenceModel) predict(window []float64) float64 {
	input := normalizeWindow(window)

	var hidden [modelHidden]float64
	for h := 0; h < modelHidden; h++ {
		sum := m.bHidden[h]
		for i := 0; i < modelWindow && i < len(input); i++ {
			sum += m.wIn[h][i] * input[i]
		}
		hidden[h] = math.Tanh(sum)
	}
	out := m.bOut
	for h := 0; h < modelHidden; h++ {
		out += m.wOut[h] * hidden[h]
	}
	y := sigmoid(out)

	r := m.outMax - m.outMin
	if r == 0 {
		r = 1
	}
	return y*r + m.outMin
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// normalizeWindow min-max scales a window to [0,1] using the window's
// own observed range. A degenerate range maps through a divisor of 1;
// invalid intermediates become 0.5.
func normalizeWindow(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	r := max - min
	if r == 0 {
		r = 1
	}

	out := make([]float64, len(values))
	for i, v := range values {
		n := (v - min) / r
		if invalid(n) {
			n = 0.5
		}
		out[i] = clamp(n, 0, 1)
	}
	return out
}

func normalizeValue(v, min, max float64) float64 {
	r := max - min
	if r == 0 {
		r = 1
	}
	n := (v - min) / r
	if invalid(n) {
		return 0.5
	}
	return clamp(n, 0, 1)
}

// predictionConfidence scores a raw model output against the key's own
// historical mean: the closer to the mean, the higher the confidence.
func predictionConfidence(prediction, mean float64) float64 {
	if invalid(prediction) || mean <= 0 {
		return 0.5
	}
	confidence := 1 - math.Abs(prediction-mean)/(mean*2)
	confidence = math.Max(0.1, confidence)
	if invalid(confidence) {
		return 0.5
	}
	return confidence
}

// learnedForecast rolls the model forward month by month over the
// key's own series: predict one step, slide the window, repeat. The
// deterministic variance-derived smoothing keeps repeated runs over
// identical data identical. Returns nil when the model output
// degenerates, in which case the caller takes the statistical path.
func learnedForecast(m *sequenceModel, series []monthPoint, horizon int, now time.Time) []models.ForecastPoint {
	if len(series) < modelWindow {
		return nil
	}

	counts := seriesCounts(series)
	mean := stat.Mean(counts, nil)

	// Smoothing amplitude from the coefficient of variation of the
	// key's own monthly counts, clamped for stability.
	amp := 0.0
	if len(counts) > 1 && mean > 0 {
		amp = math.Sqrt(stat.Variance(counts, nil)) / math.Max(1, mean)
	}
	amp = clamp(amp, 0.06, 0.18)

	window := make([]float64, modelWindow)
	copy(window, counts[len(counts)-modelWindow:])

	forecast := make([]models.ForecastPoint, 0, horizon)
	for i := 0; i < horizon; i++ {
		raw := m.predict(window)
		if invalid(raw) {
			return nil
		}

		confidence := predictionConfidence(raw, mean)

		predicted := math.Max(0, math.Round(raw))
		seasonal := math.Sin(float64(i)*math.Pi/3) * amp
		trendVar := float64(i) * math.Min(0.03, amp*0.2)
		predicted = math.Max(1, math.Round(predicted*(1+seasonal+trendVar)))

		forecast = append(forecast, models.ForecastPoint{
			Month:      monthKey(now.AddDate(0, i+1, 0)),
			Predicted:  predicted,
			Confidence: clamp(confidence, 0, 1),
			Method:     models.MethodLearned,
		})

		copy(window, window[1:])
		window[modelWindow-1] = raw
	}

	return forecast
}
