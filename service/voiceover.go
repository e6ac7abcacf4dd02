package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"IdeaToVideo-server/models"
)

// VoiceoverStyles 可选的配音语气
var VoiceoverStyles = []string{
	"neutral", "cheerful", "dramatic", "calm", "excited", "mysterious",
}

type VoiceoverRequest struct {
	Text         string  `json:"text"`
	Voice        string  `json:"voice" binding:"required"`
	Style        string  `json:"style"`
	SpeakingRate float64 `json:"speakingRate"`
}

// GenerateVoiceover 为完成态的口播脚本生成配音：语气前缀提示 → TTS →
// WAV 封装 → 上传 → 音频历史。返回可下载地址。
func (p *Pipeline) GenerateVoiceover(ctx context.Context, r *Run, req VoiceoverRequest) (string, error) {
	snap := r.Snapshot()
	if snap.ProjectID == "" {
		return "", fmt.Errorf("项目尚未保存，不能生成配音")
	}
	text := req.Text
	if text == "" {
		text = snap.FullScript
	}
	if text == "" {
		return "", fmt.Errorf("没有可配音的脚本")
	}
	if req.SpeakingRate == 0 {
		req.SpeakingRate = 1.0
	}

	spoken := text
	if req.Style != "" {
		spoken = fmt.Sprintf("Speak with a %s tone: %s", req.Style, text)
	}

	defer r.setProgress("")

	cancel := r.currentCancel()
	var samples []byte
	err := p.Gateway.Do(ctx, cancel, func(attempt, max int) {
		r.setProgress(fmt.Sprintf("配音合成重试中 (%d/%d)", attempt, max))
	}, func() error {
		var err error
		samples, err = p.Providers.TextToSpeech(ctx, spoken, req.Voice, req.SpeakingRate)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("配音合成失败: %w", err)
	}

	framed := WrapPCM(samples)
	objectName := fmt.Sprintf("projects/%s/voiceover/%s.wav", snap.ProjectID, uuid.NewString())
	url, err := p.Objects.Upload(ctx, objectName, framed, "audio/wav")
	if err != nil {
		return "", fmt.Errorf("上传配音失败: %v", err)
	}

	if err := p.Store.CreateAudioHistory(&models.AudioHistory{
		ProjectID:    snap.ProjectID,
		Text:         text,
		Voice:        req.Voice,
		Style:        req.Style,
		SpeakingRate: req.SpeakingRate,
		ObjectURL:    url,
	}); err != nil {
		return "", fmt.Errorf("记录配音历史失败: %v", err)
	}
	return url, nil
}
