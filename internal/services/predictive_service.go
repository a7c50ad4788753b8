package services

import (
	"context"
	"log"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jltdev15/crime-analytics/internal/metrics"
	"github.com/jltdev15/crime-analytics/internal/models"
)

const (
	defaultForecastHorizon = 6
	defaultPopulation      = 1000
)

// RiskAssessment is the outcome of assessing one (area, crime type)
// combination.
type RiskAssessment struct {
	RiskLevel   string             `json:"riskLevel"`
	Probability float64            `json:"probability"`
	Factors     models.RiskFactors `json:"factors"`
}

// ModelInfo describes the current state of the trained model.
type ModelInfo struct {
	Trained      bool       `json:"trained"`
	Architecture string     `json:"architecture"`
	Samples      int        `json:"samples,omitempty"`
	Iterations   int        `json:"iterations,omitempty"`
	Error        float64    `json:"error,omitempty"`
	TrainedAt    *time.Time `json:"trained_at,omitempty"`
}

// RegenerationSummary reports the outcome of a full prediction
// regeneration pass.
type RegenerationSummary struct {
	ExecutionID  string `json:"execution_id"`
	Combinations int    `json:"combinations"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
	Learned      int    `json:"learned"`
}

// PredictiveService is the forecasting core: model training, per-key
// forecasts and risk assessments, and the full regeneration passes that
// rebuild the predictions and recommendations tables.
type PredictiveService interface {
	// Initialize retrains the sequence model from the full incident
	// history. Safe to call repeatedly; every call retrains from
	// scratch and swaps the model in wholesale.
	Initialize(ctx context.Context) error

	// GenerateForecast produces a horizon-month forecast for one key,
	// preferring the learned model and falling back to the statistical
	// forecaster. Pure with respect to stored data and model state.
	GenerateForecast(ctx context.Context, key models.CrimeKey, horizon int) ([]models.ForecastPoint, error)

	// AssessRisk computes the four risk factors and classification for
	// one key.
	AssessRisk(ctx context.Context, key models.CrimeKey) (*RiskAssessment, error)

	// GenerateAllPredictions deletes every stored prediction and
	// recomputes one per (area, crime type) combination with at least
	// two incidents. Per-key failures are logged and skipped.
	GenerateAllPredictions(ctx context.Context) (*RegenerationSummary, error)

	// GenerateRecommendations deletes every stored recommendation and
	// regenerates them for current Medium and High risk predictions.
	GenerateRecommendations(ctx context.Context) (int, error)

	ModelInfo() ModelInfo
}

type predictiveService struct {
	db     *gorm.DB
	model  atomic.Pointer[sequenceModel]
	logger *log.Logger
}

// NewPredictiveService injects the *gorm.DB dependency and returns a
// PredictiveService with no trained model; callers must Initialize
// before the learned path can be taken, and everything works without
// it via the statistical fallback.
func NewPredictiveService(db *gorm.DB) PredictiveService {
	return &predictiveService{
		db:     db,
		logger: log.New(os.Stdout, "[PREDICT] ", log.LstdFlags|log.Lmsgprefix),
	}
}

func (s *predictiveService) Initialize(ctx context.Context) error {
	start := time.Now()

	var crimes []models.Crime
	if err := s.db.WithContext(ctx).Order("confinement_date ASC").Find(&crimes).Error; err != nil {
		return err
	}

	series := monthlyCounts(crimes)
	model := trainSequenceModel(series)
	if model == nil {
		// Not an error: the statistical path is fully functional on
		// its own.
		s.model.Store(nil)
		s.logger.Printf("insufficient data to train model (%d monthly points), statistical fallback active", len(series))
		return nil
	}

	metrics.ModelTrainingDuration.Observe(time.Since(start).Seconds())
	s.model.Store(model)
	s.logger.Printf("model trained: %d samples, %d iterations, mse=%.6f", model.samples, model.iterations, model.mse)
	return nil
}

func (s *predictiveService) ModelInfo() ModelInfo {
	info := ModelInfo{Architecture: "dense 6-8-1 sliding window"}
	m := s.model.Load()
	if m == nil {
		return info
	}
	trainedAt := m.trainedAt
	info.Trained = true
	info.Samples = m.samples
	info.Iterations = m.iterations
	info.Error = m.mse
	info.TrainedAt = &trainedAt
	return info
}

func (s *predictiveService) GenerateForecast(ctx context.Context, key models.CrimeKey, horizon int) ([]models.ForecastPoint, error) {
	if horizon <= 0 {
		horizon = defaultForecastHorizon
	}

	crimes, err := s.historicalData(ctx, key)
	if err != nil {
		return nil, err
	}

	series := monthlyCounts(crimes)
	mean := seriesMean(series)
	isLowFrequency := mean < lowFrequencyMean

	// The learned path needs a trained model and at least a full input
	// window of this key's own history; anything less goes statistical
	// even when the citywide model trained fine.
	if model := s.model.Load(); model != nil && len(series) >= modelWindow {
		if learned := learnedForecast(model, series, horizon, time.Now().UTC()); len(learned) > 0 {
			return validateLearnedForecast(learned, mean, isLowFrequency), nil
		}
		s.logger.Printf("learned forecast degenerated for %s/%s, using statistical fallback", key.Barangay, key.CrimeType)
	}

	return statisticalForecast(crimes, series, horizon), nil
}

// statisticalForecast is the deterministic fallback path: default
// forecast for very thin histories, linear regression otherwise.
func statisticalForecast(crimes []models.Crime, series []monthPoint, horizon int) []models.ForecastPoint {
	if len(crimes) < 3 {
		base := 0.0
		if mean := seriesMean(series); mean > 0 {
			base = round1(mean)
		}
		return defaultForecast(horizon, base, base < lowFrequencyMean, time.Now().UTC())
	}
	return linearRegressionForecast(series, horizon)
}

// validateLearnedForecast post-processes raw learned output: invalid
// numbers are replaced with the key's historical-mean fallback, values
// are capped against historical magnitude, bounds and rounding policy
// are applied.
func validateLearnedForecast(points []models.ForecastPoint, mean float64, isLowFrequency bool) []models.ForecastPoint {
	fallback := 0.0
	if mean > 0 {
		fallback = round1(mean)
	}

	maxCap := math.Max(mean*1.5, 0)
	if isLowFrequency {
		maxCap = math.Min(math.Max(mean*2, 0), 3)
	}
	fractional := mean < 0.5 && mean > 0

	out := make([]models.ForecastPoint, 0, len(points))
	for i, f := range points {
		predicted := f.Predicted
		if invalid(predicted) {
			predicted = fallback
		}
		confidence := f.Confidence
		if invalid(confidence) {
			confidence = 0.5
		}

		if i > 0 && !isLowFrequency {
			predicted *= 1 + math.Sin(float64(i)*math.Pi/3)*0.05
		}

		// The historical-magnitude cap is a hard bound applied after
		// rounding; flooring at the output granularity keeps a rounded
		// value from climbing back above it.
		var rounded, lower, upper float64
		if fractional {
			rounded = round1(math.Max(0, predicted))
			if rounded > maxCap {
				rounded = math.Floor(maxCap*10) / 10
			}
			lower = math.Max(0, round1(rounded*0.8))
			upper = round1(rounded * 1.2)
		} else {
			rounded = math.Max(0, math.Round(predicted))
			if rounded > maxCap {
				rounded = math.Floor(maxCap)
			}
			lower = math.Max(0, math.Round(rounded*0.8))
			upper = math.Round(rounded * 1.2)
		}

		if isLowFrequency {
			confidence *= 0.8
		}

		out = append(out, models.ForecastPoint{
			Month:      f.Month,
			Predicted:  rounded,
			Lower:      lower,
			Upper:      upper,
			Confidence: clamp(confidence, 0, 1),
			Method:     models.MethodLearned,
		})
	}
	return out
}

func (s *predictiveService) AssessRisk(ctx context.Context, key models.CrimeKey) (*RiskAssessment, error) {
	crimes, err := s.historicalData(ctx, key)
	if err != nil {
		return nil, err
	}
	population := s.population(ctx, key.Barangay, key.Municipality, key.Province)

	now := time.Now().UTC()
	series := monthlyCounts(crimes)

	factors := models.RiskFactors{
		HistoricalTrend:   historicalTrend(series),
		SeasonalPattern:   seasonalPattern(crimes, series),
		PopulationDensity: populationDensity(population),
		RecentActivity:    recentActivity(crimes, now),
	}
	probability := riskProbability(factors)

	// When the learned model flags elevated next-month activity with
	// high confidence the probability is boosted. The adjustment is
	// deliberately one-sided: the learned signal never dampens risk.
	if model := s.model.Load(); model != nil && len(series) >= modelWindow {
		if learned := learnedForecast(model, series, 1, now); len(learned) > 0 {
			if learned[0].Predicted > 10 && learned[0].Confidence > 0.7 {
				probability = math.Min(1, probability*1.2)
			}
		}
	}

	return &RiskAssessment{
		RiskLevel:   riskLevelFor(probability),
		Probability: probability,
		Factors:     factors,
	}, nil
}

// crimeCombination is one (area, crime type) grouping row.
type crimeCombination struct {
	Barangay     string
	Municipality string
	Province     string
	Country      string
	CrimeType    string
	Count        int
}

func (s *predictiveService) GenerateAllPredictions(ctx context.Context) (*RegenerationSummary, error) {
	summary := &RegenerationSummary{ExecutionID: uuid.New().String()}
	s.logger.Printf("starting prediction regeneration (execution %s)", summary.ExecutionID)

	// Wholesale replace: clearing first guarantees no stale rows for
	// combinations whose underlying data disappeared.
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Prediction{}).Error; err != nil {
		return nil, err
	}

	if s.model.Load() == nil {
		if err := s.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	var combos []crimeCombination
	err := s.db.WithContext(ctx).Model(&models.Crime{}).
		Select("barangay, municipality, province, country, crime_type, COUNT(*) AS count").
		Group("barangay, municipality, province, country, crime_type").
		Having("COUNT(*) >= ?", 2).
		Scan(&combos).Error
	if err != nil {
		return nil, err
	}
	summary.Combinations = len(combos)
	s.logger.Printf("found %d combinations with sufficient data", len(combos))

	for _, combo := range combos {
		key := models.CrimeKey{
			Barangay:     combo.Barangay,
			Municipality: combo.Municipality,
			Province:     combo.Province,
			Country:      combo.Country,
			CrimeType:    combo.CrimeType,
		}

		forecast, err := s.GenerateForecast(ctx, key, defaultForecastHorizon)
		if err != nil {
			s.logger.Printf("forecast failed for %s/%s: %v", key.Barangay, key.CrimeType, err)
			summary.Failed++
			metrics.PredictionFailures.Inc()
			continue
		}
		assessment, err := s.AssessRisk(ctx, key)
		if err != nil {
			s.logger.Printf("risk assessment failed for %s/%s: %v", key.Barangay, key.CrimeType, err)
			summary.Failed++
			metrics.PredictionFailures.Inc()
			continue
		}

		confidence := 0.8
		if len(forecast) > 0 {
			sum := 0.0
			for _, f := range forecast {
				if !invalid(f.Confidence) {
					sum += f.Confidence
				}
			}
			confidence = sum / float64(len(forecast))
		}

		prediction := models.Prediction{
			Barangay:     combo.Barangay,
			Municipality: combo.Municipality,
			Province:     combo.Province,
			Country:      combo.Country,
			CrimeType:    combo.CrimeType,
			Forecast:     forecast,
			RiskLevel:    assessment.RiskLevel,
			Probability:  assessment.Probability,
			Confidence:   confidence,
			Factors:      assessment.Factors,
		}
		if err := s.db.WithContext(ctx).Create(&prediction).Error; err != nil {
			s.logger.Printf("failed to store prediction for %s/%s: %v", key.Barangay, key.CrimeType, err)
			summary.Failed++
			metrics.PredictionFailures.Inc()
			continue
		}

		summary.Succeeded++
		method := models.MethodStatistical
		if len(forecast) > 0 && forecast[0].Method == models.MethodLearned {
			method = models.MethodLearned
			summary.Learned++
		}
		metrics.PredictionsGenerated.WithLabelValues(method).Inc()
	}

	s.logger.Printf("regeneration done: %d succeeded, %d failed, %d via learned model", summary.Succeeded, summary.Failed, summary.Learned)
	return summary, nil
}

func (s *predictiveService) GenerateRecommendations(ctx context.Context) (int, error) {
	s.logger.Printf("starting recommendation regeneration")

	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Recommendation{}).Error; err != nil {
		return 0, err
	}

	var predictions []models.Prediction
	err := s.db.WithContext(ctx).
		Where("risk_level IN ?", []string{models.RiskMedium, models.RiskHigh}).
		Find(&predictions).Error
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range predictions {
		recs, err := s.buildRecommendations(ctx, &predictions[i])
		if err != nil {
			s.logger.Printf("recommendation generation failed for %s/%s: %v",
				predictions[i].Barangay, predictions[i].CrimeType, err)
			continue
		}
		for j := range recs {
			if err := s.db.WithContext(ctx).Create(&recs[j]).Error; err != nil {
				s.logger.Printf("failed to store recommendation: %v", err)
				continue
			}
			total++
			metrics.RecommendationsGenerated.Inc()
		}
	}

	s.logger.Printf("generated %d recommendations for %d predictions", total, len(predictions))
	return total, nil
}

// historicalData loads the full incident history for one key, sorted
// ascending by confinement date.
func (s *predictiveService) historicalData(ctx context.Context, key models.CrimeKey) ([]models.Crime, error) {
	query := s.db.WithContext(ctx).
		Where("barangay = ? AND municipality = ? AND province = ? AND crime_type = ?",
			key.Barangay, key.Municipality, key.Province, key.CrimeType)
	// Country is part of the grouping key during regeneration; an empty
	// country means the caller did not scope it.
	if key.Country != "" {
		query = query.Where("country = ?", key.Country)
	}

	var crimes []models.Crime
	err := query.Order("confinement_date ASC").Find(&crimes).Error
	if err != nil {
		return nil, err
	}
	return crimes, nil
}

// population resolves an area's population, defaulting when the
// barangay is unknown or has no recorded figure.
func (s *predictiveService) population(ctx context.Context, barangay, municipality, province string) int {
	var b models.Barangay
	err := s.db.WithContext(ctx).
		Where("name = ? AND municipality = ? AND province = ?", barangay, municipality, province).
		First(&b).Error
	if err != nil || b.Population <= 0 {
		return defaultPopulation
	}
	return b.Population
}
