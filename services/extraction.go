package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"checkmaster/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ExtractionFailureReasoning пояснение, возвращаемое при любой ошибке распознавания
const ExtractionFailureReasoning = "Erro na extração de IA. Verifique manualmente."

// ExtractedData результат распознавания фото. Гарантировано только Reasoning.
type ExtractedData struct {
	Plate     string `json:"plate,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Model     string `json:"model,omitempty"`
	IMEI      string `json:"imei,omitempty"`
	Reasoning string `json:"reasoning"`
}

// Failed true, если распознавание не дало ни одного значения
func (d ExtractedData) Failed() bool {
	return d.Plate == "" && d.Brand == "" && d.Model == "" && d.IMEI == ""
}

// VehicleExtractor распознает данные ТС на изображении. Никогда не возвращает
// ошибку: сбой превращается в ответ с одним Reasoning.
type VehicleExtractor interface {
	ExtractVehicleInfo(ctx context.Context, image []byte) ExtractedData
}

// generateFunc сигнатура вызова модели, подменяется в тестах
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiExtractor распознавание через Gemini
type GeminiExtractor struct {
	generate generateFunc
	model    string
	prompt   string
	logger   *zap.Logger
}

// NewGeminiExtractor создает клиент Gemini по настройкам
func NewGeminiExtractor(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY не задан")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать клиент Gemini: %w", err)
	}

	return newGeminiExtractor(client.Models.GenerateContent, cfg, logger), nil
}

func newGeminiExtractor(generate generateFunc, cfg config.GeminiConfig, logger *zap.Logger) *GeminiExtractor {
	model := cfg.Model
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = config.DefaultExtractionPrompt
	}
	return &GeminiExtractor{
		generate: generate,
		model:    model,
		prompt:   prompt,
		logger:   loggerOrNop(logger),
	}
}

// extractionSchema схема ответа модели; обязательно только поле reasoning
func extractionSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"plate":     str,
			"brand":     str,
			"model":     str,
			"imei":      str,
			"reasoning": str,
		},
		Required: []string{"reasoning"},
	}
}

// ExtractVehicleInfo отправляет JPEG изображение в модель и разбирает JSON ответ
func (e *GeminiExtractor) ExtractVehicleInfo(ctx context.Context, image []byte) ExtractedData {
	if e == nil || e.generate == nil || len(image) == 0 {
		return ExtractedData{Reasoning: ExtractionFailureReasoning}
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, "image/jpeg"),
			genai.NewPartFromText(e.prompt),
		}, genai.RoleUser),
	}

	resp, err := e.generate(ctx, e.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   extractionSchema(),
	})
	if err != nil {
		e.logger.Warn("Ошибка распознавания изображения", zap.Error(err))
		return ExtractedData{Reasoning: ExtractionFailureReasoning}
	}

	return e.parse(resp.Text())
}

func (e *GeminiExtractor) parse(text string) ExtractedData {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "{}"
	}

	var data ExtractedData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		e.logger.Warn("Некорректный ответ модели распознавания", zap.Error(err))
		return ExtractedData{Reasoning: ExtractionFailureReasoning}
	}

	data.Plate = strings.TrimSpace(data.Plate)
	data.Brand = strings.TrimSpace(data.Brand)
	data.Model = strings.TrimSpace(data.Model)
	data.IMEI = strings.TrimSpace(data.IMEI)
	if strings.TrimSpace(data.Reasoning) == "" {
		data.Reasoning = ExtractionFailureReasoning
	}
	return data
}

// UnavailableExtractor используется, когда ключ Gemini не настроен
type UnavailableExtractor struct{}

func (UnavailableExtractor) ExtractVehicleInfo(context.Context, []byte) ExtractedData {
	return ExtractedData{Reasoning: ExtractionFailureReasoning}
}
