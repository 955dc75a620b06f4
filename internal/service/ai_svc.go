package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"nhadat_dev_v1/internal/wizard"
)

// SuggestedContent 定义 AI 返回的结构化数据
// 公开给 Controller 层引用
type SuggestedContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

// AIService 根据已填表单生成标题和描述的草稿
// 未配置 API Key 时整个功能关闭，向导流程不受影响
type AIService struct {
	apiKey       string
	modelVersion string
}

// NewAIService 支持传入模型版本
func NewAIService(apiKey string, modelVersion string) *AIService {
	if modelVersion == "" {
		modelVersion = "gemini-2.5-flash"
	}
	return &AIService{
		apiKey:       apiKey,
		modelVersion: modelVersion,
	}
}

// Enabled nil 接收者也安全，方便按需装配
func (s *AIService) Enabled() bool {
	return s != nil && s.apiKey != ""
}

// SuggestListingContent 生成逻辑
// typeName 是类型目录里的显示名；extraInstruction 允许用户补充指令，
// 例如 "nhấn mạnh view sông" 或 "giọng văn trang trọng"
func (s *AIService) SuggestListingContent(ctx context.Context, st *wizard.DraftState, typeName string, extraInstruction string) (*SuggestedContent, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("Gemini 初始化失败: %v", err)
	}
	defer client.Close()

	modelAI := client.GenerativeModel(s.modelVersion)
	modelAI.ResponseMIMEType = "application/json"

	basePrompt := buildListingPrompt(st, typeName, extraInstruction)

	resp, err := modelAI.GenerateContent(ctx, genai.Text(basePrompt))
	if err != nil {
		return nil, fmt.Errorf("AI 生成失败: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("AI 返回为空")
	}

	var rawJSON string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			rawJSON = string(txt)
			break
		}
	}

	return parseSuggestedContent(rawJSON)
}

// buildListingPrompt 把表单事实拼成 Prompt
// 只放已填的字段，空字段不出现在 Prompt 里
func buildListingPrompt(st *wizard.DraftState, typeName string, extraInstruction string) string {
	var facts []string

	verb := "bán"
	if st.Purpose == "for_rent" {
		verb = "cho thuê"
	}
	facts = append(facts, fmt.Sprintf("Giao dịch: %s %s", verb, typeName))

	if st.Location.District != "" || st.Location.Province != "" {
		facts = append(facts, fmt.Sprintf("Vị trí: %s, %s", st.Location.District, st.Location.Province))
	}
	if st.Location.ProjectName != "" {
		facts = append(facts, "Dự án: "+st.Location.ProjectName)
	}
	if st.Area > 0 {
		facts = append(facts, fmt.Sprintf("Diện tích: %.1f m2", st.Area))
	}
	for key, value := range st.Attributes {
		facts = append(facts, fmt.Sprintf("%s: %v", key, value))
	}
	if len(st.Amenities) > 0 {
		facts = append(facts, "Tiện ích: "+strings.Join(st.Amenities, ", "))
	}
	if st.Price.Amount > 0 {
		facts = append(facts, fmt.Sprintf("Giá: %.0f (%s)", st.Price.Amount, st.Price.Unit))
	}

	basePrompt := fmt.Sprintf(`
        You are a Vietnamese real-estate copywriter.
        Write a listing in Vietnamese based on these facts:
        %s

        Requirements:
        1. Title: concise, max 100 chars, mention location.
        2. Description: engaging, at least 120 words, factual, no invented details.
        3. Highlights: 3-5 short selling points.
    `, strings.Join(facts, "\n        "))

	if extraInstruction != "" {
		basePrompt += fmt.Sprintf("\nAdditional instructions: %s", extraInstruction)
	}

	basePrompt += `
        Output Schema (JSON):
        {
            "title": "string",
            "description": "string",
            "highlights": ["string", "string"]
        }
    `
	return basePrompt
}

// parseSuggestedContent 清洗可能存在的 markdown 符号后解析
func parseSuggestedContent(rawJSON string) (*SuggestedContent, error) {
	rawJSON = strings.TrimSpace(rawJSON)
	rawJSON = strings.TrimPrefix(rawJSON, "```json")
	rawJSON = strings.TrimPrefix(rawJSON, "```")
	rawJSON = strings.TrimSuffix(rawJSON, "```")

	var result SuggestedContent
	if err := json.Unmarshal([]byte(rawJSON), &result); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %v | 原始数据: %s", err, rawJSON)
	}
	return &result, nil
}
