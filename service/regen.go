package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"IdeaToVideo-server/models"
)

// currentCancel 取当前取消标记；上一次取消已消费完则换新，
// 避免残留的取消把下一次重生成立刻打断。
func (r *Run) currentCancel() *CancelFlag {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel.Cancelled() {
		r.cancel = NewCancelFlag()
	}
	return r.cancel
}

// RegenerateCharacterImage 原地重生成单个角色形象：仅替换该角色的图，
// 描述词与其他角色不受影响。同一角色并发重生成直接拒绝，不排队。
func (p *Pipeline) RegenerateCharacterImage(ctx context.Context, r *Run, index int) error {
	r.mu.Lock()
	if index < 0 || index >= len(r.Characters) {
		r.mu.Unlock()
		return fmt.Errorf("角色下标 %d 越界", index)
	}
	c := r.Characters[index]
	if c.Status != StatusIdle {
		r.mu.Unlock()
		return fmt.Errorf("角色 %s 已在重新生成中", c.Name)
	}
	c.Status = StatusGenerating
	name, desc, style := c.Name, c.Description, r.Idea.Style
	r.publishLocked()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		c.Status = StatusIdle
		r.Progress = "" // 重试状态随操作结束一起清掉
		r.publishLocked()
		r.mu.Unlock()
	}()

	cancel := r.currentCancel()
	var img []byte
	err := p.Gateway.Do(ctx, cancel, func(attempt, max int) {
		r.setProgress(fmt.Sprintf("角色 %s 形象重试中 (%d/%d)", name, attempt, max))
	}, func() error {
		var err error
		img, err = p.Providers.CharacterImage(ctx, desc, style)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return ErrCancelled
		}
		return fmt.Errorf("重新生成角色 %s 形象失败: %w", name, err)
	}

	r.mu.Lock()
	c.Image = img
	r.publishLocked()
	r.mu.Unlock()
	return nil
}

// RegenerateSceneImage 原地重生成单个场景图。出场角色形象与地点背景按
// 当前状态重新计算，不用快照，所以之前的提示词编辑与地点改选会生效。
// 项目已持久化时，成功后发起一次后台补写，补写失败只记日志。
func (p *Pipeline) RegenerateSceneImage(ctx context.Context, r *Run, seq int) error {
	r.mu.Lock()
	s := r.sceneLocked(seq)
	if s == nil {
		r.mu.Unlock()
		return fmt.Errorf("场景 %d 不存在", seq)
	}
	if s.Status != StatusIdle {
		r.mu.Unlock()
		return fmt.Errorf("场景 %d 已在重新生成中", seq)
	}
	s.Status = StatusGenerating
	r.publishLocked()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		s.Status = StatusIdle
		r.Progress = ""
		r.publishLocked()
		r.mu.Unlock()
	}()

	refs, location, err := p.sceneComposeInputs(r, s)
	if err != nil {
		return err
	}

	cancel := r.currentCancel()
	var img []byte
	err = p.Gateway.Do(ctx, cancel, func(attempt, max int) {
		r.setProgress(fmt.Sprintf("场景 %d 合成重试中 (%d/%d)", seq, attempt, max))
	}, func() error {
		var err error
		img, err = p.Providers.SceneImage(ctx, refs, s.Description, r.Idea.Style, location)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return ErrCancelled
		}
		return fmt.Errorf("重新生成场景 %d 失败: %w", seq, err)
	}

	r.mu.Lock()
	s.Image = img
	projectID := r.ProjectID
	r.publishLocked()
	r.mu.Unlock()

	// 后台补写与本次同步更新解耦，调用方不感知补写结果
	if projectID != "" && p.Resaver != nil {
		if err := p.Resaver.EnqueueResave(r.ID); err != nil {
			log.Printf("[Queue] 场景补写任务入队失败 run=%s: %v", r.ID, err)
		}
	}
	return nil
}

// GenerateSceneVideos 生成一个场景的视频对，显式阶段机推进：
// 优化提示词（恰好两条，否则整步失败）→ 变体 1 → 变体 2。
// 两条变体共用一个重试网关实例，各自独立的观察者写回重试状态。
// 任一阶段失败则丢弃两条变体，绝不保留半对。
func (p *Pipeline) GenerateSceneVideos(ctx context.Context, r *Run, seq int) error {
	r.mu.Lock()
	s := r.sceneLocked(seq)
	if s == nil {
		r.mu.Unlock()
		return fmt.Errorf("场景 %d 不存在", seq)
	}
	switch s.Video.Phase {
	case VideoOptimizingPrompts, VideoGeneratingFirst, VideoGeneratingSecond:
		r.mu.Unlock()
		return fmt.Errorf("场景 %d 视频已在生成中", seq)
	}
	if len(s.Image) == 0 {
		r.mu.Unlock()
		return fmt.Errorf("场景 %d 尚未生成场景图", seq)
	}
	projectID := r.ProjectID
	if projectID == "" {
		r.mu.Unlock()
		return fmt.Errorf("项目尚未保存，不能生成视频")
	}
	s.Video = VideoState{Phase: VideoOptimizingPrompts, Message: "正在优化动作提示词..."}
	desc, image := s.Description, s.Image
	r.publishLocked()
	r.mu.Unlock()

	setVideo := func(phase VideoPhase, msg string) {
		r.mu.Lock()
		s.Video.Phase = phase
		s.Video.Message = msg
		r.publishLocked()
		r.mu.Unlock()
	}
	fail := func(err error) error {
		if errors.Is(err, ErrCancelled) {
			r.mu.Lock()
			s.Video = VideoState{Phase: VideoIdle}
			r.publishLocked()
			r.mu.Unlock()
			return ErrCancelled
		}
		scoped := fmt.Errorf("场景 %d 视频生成失败: %w", seq, err)
		r.mu.Lock()
		s.Video = VideoState{Phase: VideoFailed, Message: scoped.Error()}
		r.publishLocked()
		r.mu.Unlock()
		return scoped
	}

	cancel := r.currentCancel()
	gw := p.Gateway

	var prompts []string
	err := gw.Do(ctx, cancel, func(attempt, max int) {
		setVideo(VideoOptimizingPrompts, fmt.Sprintf("动作提示词重试中 (%d/%d)", attempt, max))
	}, func() error {
		var err error
		prompts, err = p.Providers.VideoPromptVariants(ctx, desc)
		return err
	})
	if err != nil {
		return fail(err)
	}
	if len(prompts) != 2 {
		return fail(&ContractError{Msg: fmt.Sprintf("动作提示词应为两条，收到 %d 条", len(prompts))})
	}

	variants := make([][]byte, 2)
	for i := 0; i < 2; i++ {
		phase := VideoGeneratingFirst
		if i == 1 {
			phase = VideoGeneratingSecond
		}
		setVideo(phase, fmt.Sprintf("正在生成视频变体 %d/2", i+1))
		variant := i
		err := gw.Do(ctx, cancel, func(attempt, max int) {
			setVideo(phase, fmt.Sprintf("视频变体 %d 重试中 (%d/%d)", variant+1, attempt, max))
		}, func() error {
			var err error
			variants[variant], err = p.Providers.ImageToVideo(ctx, image, prompts[variant])
			return err
		})
		if err != nil {
			return fail(err)
		}
	}

	urls := make([]string, 2)
	histories := make([]models.VideoHistory, 0, 2)
	for i, data := range variants {
		objectName := fmt.Sprintf("projects/%s/scenes/%d/video%d.mp4", projectID, seq, i+1)
		url, err := p.Objects.Upload(ctx, objectName, data, "video/mp4")
		if err != nil {
			return fail(fmt.Errorf("上传视频变体 %d 失败: %v", i+1, err))
		}
		urls[i] = url
		histories = append(histories, models.VideoHistory{
			ProjectID: projectID,
			SceneSeq:  seq,
			Variant:   i + 1,
			Prompt:    prompts[i],
			ObjectURL: url,
		})
	}
	// 两条变体的历史行一次写入，失败时一条都不落
	if err := p.Store.CreateVideoHistories(histories); err != nil {
		return fail(fmt.Errorf("记录视频历史失败: %v", err))
	}

	r.mu.Lock()
	s.Video = VideoState{Phase: VideoComplete, Variant1: urls[0], Variant2: urls[1]}
	r.publishLocked()
	r.mu.Unlock()
	return nil
}
