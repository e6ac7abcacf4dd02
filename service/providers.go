package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"IdeaToVideo-server/config"
	"IdeaToVideo-server/models"
)

// SettingActiveBackend setting 表里记录当前后端 server id 的键名
const SettingActiveBackend = "active_backend_server"

type CharacterDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PlanScene struct {
	Description       string   `json:"description"`
	Script            string   `json:"script"`
	CharactersInScene []string `json:"characters_in_scene"`
}

// StoryPlan 剧本规划结果：角色定义 + 分场景故事板
type StoryPlan struct {
	Characters []CharacterDef `json:"characters"`
	Storyboard []PlanScene    `json:"storyboard"`
}

// CharacterRef 场景合成时引用的角色形象
type CharacterRef struct {
	Name  string
	Image []byte
}

type StoryPlanRequest struct {
	Idea       string
	Style      string
	Language   string
	Genre      string
	SceneCount int
	// 非空时走 hybrid 模式：规划只返回新增角色，可能为空
	ExistingCharacters []CharacterRef
	LocationName       string
}

// Providers 生成能力后端的统一契约，类型化请求/响应，全部可能长时间阻塞
type Providers interface {
	StoryPlan(ctx context.Context, req StoryPlanRequest) (*StoryPlan, error)
	CharacterImage(ctx context.Context, description, style string) ([]byte, error)
	SceneImage(ctx context.Context, refs []CharacterRef, description, style string, location []byte) ([]byte, error)
	CinematicPrompt(ctx context.Context, description, script, style string) (*models.CinematicPrompt, error)
	VideoPromptVariants(ctx context.Context, description string) ([]string, error)
	ImageToVideo(ctx context.Context, image []byte, prompt string) ([]byte, error)
	TextToSpeech(ctx context.Context, text, voice string, rate float64) ([]byte, error)
	SeoBundle(ctx context.Context, promptContext, language string) (*models.SeoBundle, error)
}

const (
	// 生图默认反向提示词
	imageNegativePrompt = "blur, distortion, low quality, watermark, text, signature, logo, ugly, disfigured"
	// 图生视频反向提示词（上游模型按中文语料训练）
	videoNegativePrompt = "色调艳丽，过曝，静态，细节模糊不清，字幕，风格，作品，画作，画面，静止，整体发灰，最差质量，低质量，JPEG压缩残留，丑陋的，残缺的，多余的手指，画得不好的手部，画得不好的脸部，畸形的，毁容的，形态畸形的肢体，手指融合，静止不动的画面，杂乱的背景，三条腿，背景人很多，倒着走"
)

// HTTPProviders Providers 的 HTTP 实现，按 config.Backends 的 worker 地址分发
type HTTPProviders struct {
	Client *http.Client
}

func NewHTTPProviders() *HTTPProviders {
	return &HTTPProviders{
		Client: &http.Client{Timeout: 20 * time.Minute},
	}
}

// activeBackendKey 每次能力调用开始时重新解析一次后端选择：
// setting 表优先，未设置则用配置默认值。调用过程中改选择只影响后续调用。
func activeBackendKey() string {
	cfg := config.AppConfig.Backends
	if v, err := models.GetSetting(SettingActiveBackend); err == nil && v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			for _, s := range cfg.Servers {
				if s.ID == id {
					return s.Key
				}
			}
		}
	}
	for _, s := range cfg.Servers {
		if s.ID == cfg.DefaultServer {
			return s.Key
		}
	}
	if len(cfg.Servers) > 0 {
		return cfg.Servers[0].Key
	}
	return ""
}

func (p *HTTPProviders) postJSON(ctx context.Context, url, key string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request failed: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("create request failed: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend status %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ContractError{Msg: fmt.Sprintf("decode backend response failed: %v", err)}
	}
	return nil
}

// postBinary 请求以二进制体（图片/视频/音频）应答的后端
func (p *HTTPProviders) postBinary(ctx context.Context, url, key string, body interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{Status: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("backend status %d: %s", resp.StatusCode, string(b))
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") || strings.HasPrefix(contentType, "text/") {
		// 200 但不是媒体流，属于契约外响应
		b, _ := io.ReadAll(resp.Body)
		return nil, &ContractError{Msg: fmt.Sprintf("expected binary response, got %q: %s", contentType, string(b))}
	}
	return io.ReadAll(resp.Body)
}

func (p *HTTPProviders) StoryPlan(ctx context.Context, req StoryPlanRequest) (*StoryPlan, error) {
	key := activeBackendKey()
	type existingChar struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	body := map[string]interface{}{
		"idea":        req.Idea,
		"style":       req.Style,
		"language":    req.Language,
		"genre":       req.Genre,
		"scene_count": req.SceneCount,
	}
	if req.LocationName != "" {
		body["location"] = req.LocationName
	}
	if len(req.ExistingCharacters) > 0 {
		chars := make([]existingChar, 0, len(req.ExistingCharacters))
		for _, c := range req.ExistingCharacters {
			chars = append(chars, existingChar{Name: c.Name, Image: base64.StdEncoding.EncodeToString(c.Image)})
		}
		body["existing_characters"] = chars
	}

	var plan StoryPlan
	if err := p.postJSON(ctx, config.AppConfig.Backends.TextAPI+"/v1/story-plan", key, body, &plan); err != nil {
		return nil, err
	}
	if len(plan.Storyboard) == 0 {
		return nil, &ContractError{Msg: "story plan contains no storyboard scenes"}
	}
	return &plan, nil
}

func (p *HTTPProviders) CharacterImage(ctx context.Context, description, style string) ([]byte, error) {
	key := activeBackendKey()
	body := map[string]interface{}{
		"prompt":              description,
		"style":               style,
		"negative_prompt":     imageNegativePrompt,
		"guidance_scale":      7.5,
		"width":               576, // 统一 9:16 竖版
		"height":              1024,
		"num_inference_steps": 50,
	}
	return p.postBinary(ctx, config.AppConfig.Backends.ImageAPI+"/generate", key, body)
}

func (p *HTTPProviders) SceneImage(ctx context.Context, refs []CharacterRef, description, style string, location []byte) ([]byte, error) {
	key := activeBackendKey()
	type charPayload struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	chars := make([]charPayload, 0, len(refs))
	for _, r := range refs {
		chars = append(chars, charPayload{Name: r.Name, Image: base64.StdEncoding.EncodeToString(r.Image)})
	}
	body := map[string]interface{}{
		"characters":  chars,
		"description": description,
		"style":       style,
	}
	if len(location) > 0 {
		body["location"] = base64.StdEncoding.EncodeToString(location)
	}
	return p.postBinary(ctx, config.AppConfig.Backends.ImageAPI+"/compose", key, body)
}

func (p *HTTPProviders) CinematicPrompt(ctx context.Context, description, script, style string) (*models.CinematicPrompt, error) {
	key := activeBackendKey()
	body := map[string]interface{}{
		"description": description,
		"script":      script,
		"style":       style,
	}
	var out models.CinematicPrompt
	if err := p.postJSON(ctx, config.AppConfig.Backends.TextAPI+"/v1/cinematic-prompt", key, body, &out); err != nil {
		return nil, err
	}
	if out.MainPrompt == "" {
		return nil, &ContractError{Msg: "cinematic prompt missing mainPrompt"}
	}
	return &out, nil
}

func (p *HTTPProviders) VideoPromptVariants(ctx context.Context, description string) ([]string, error) {
	key := activeBackendKey()
	body := map[string]interface{}{"description": description}
	var out struct {
		Prompts []string `json:"prompts"`
	}
	if err := p.postJSON(ctx, config.AppConfig.Backends.TextAPI+"/v1/video-prompts", key, body, &out); err != nil {
		return nil, err
	}
	if len(out.Prompts) < 2 {
		return nil, &ContractError{Msg: "backend returned fewer than two video prompt variants"}
	}
	return out.Prompts[:2], nil
}

func (p *HTTPProviders) ImageToVideo(ctx context.Context, image []byte, prompt string) ([]byte, error) {
	key := activeBackendKey()
	body := map[string]interface{}{
		"image":            base64.StdEncoding.EncodeToString(image),
		"prompt":           prompt,
		"negative_prompt":  videoNegativePrompt,
		"fps":              16,
		"fast":             true,
		"frames":           81, // 约 5 秒
		"resolution":       "480p",
		"guidance_scale":   1,
		"guidance_scale_2": 1,
	}
	return p.postBinary(ctx, config.AppConfig.Backends.VideoAPI+"/generate", key, body)
}

func (p *HTTPProviders) TextToSpeech(ctx context.Context, text, voice string, rate float64) ([]byte, error) {
	key := activeBackendKey()
	body := map[string]interface{}{
		"text":          text,
		"voice":         voice,
		"speaking_rate": rate,
	}
	// 返回裸 PCM 采样流（24kHz 单声道 16bit），播放前需 service.WrapPCM 封装
	return p.postBinary(ctx, config.AppConfig.Backends.TTSAPI+"/synthesize", key, body)
}

func (p *HTTPProviders) SeoBundle(ctx context.Context, promptContext, language string) (*models.SeoBundle, error) {
	key := activeBackendKey()
	body := map[string]interface{}{
		"context":  promptContext,
		"language": language,
	}
	var out models.SeoBundle
	if err := p.postJSON(ctx, config.AppConfig.Backends.TextAPI+"/v1/seo", key, body, &out); err != nil {
		return nil, err
	}
	if out.Title == "" || len(out.Platforms) == 0 {
		return nil, &ContractError{Msg: "seo bundle missing title or platforms"}
	}
	return &out, nil
}
