package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"IdeaToVideo-server/models"
)

// Stage 流水线阶段，每个阶段对应一个用户确认点
type Stage string

const (
	StageIdea               Stage = "idea"
	StageCharacterApproval  Stage = "character_approval"
	StageStoryboardApproval Stage = "storyboard_approval"
	StageSceneImageApproval Stage = "scene_image_approval"
	StageFinal              Stage = "final"
)

// stageOrder 用于校验 back 目标必须是更早的阶段
var stageOrder = map[Stage]int{
	StageIdea:               0,
	StageCharacterApproval:  1,
	StageStoryboardApproval: 2,
	StageSceneImageApproval: 3,
	StageFinal:              4,
}

// ArtifactStatus 单个产物的状态，任一时刻每个产物至多一个非 idle 状态
type ArtifactStatus string

const (
	StatusIdle       ArtifactStatus = "idle"
	StatusGenerating ArtifactStatus = "generating"
)

// VideoPhase 场景视频对的生成阶段机
type VideoPhase string

const (
	VideoIdle              VideoPhase = "idle"
	VideoOptimizingPrompts VideoPhase = "optimizing_prompts"
	VideoGeneratingFirst   VideoPhase = "generating_variant_1"
	VideoGeneratingSecond  VideoPhase = "generating_variant_2"
	VideoComplete          VideoPhase = "complete"
	VideoFailed            VideoPhase = "failed"
)

type CharacterArtifact struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       []byte         `json:"image,omitempty"`
	Provenance  string         `json:"provenance"`
	LibraryID   string         `json:"libraryId,omitempty"`
	Status      ArtifactStatus `json:"status"`

	// 已在项目身份下落库。完成转换中断重试时据此补齐剩余角色
	saved bool
}

// VideoState 一个场景的视频对状态，Message 随子步骤推进整体覆写
type VideoState struct {
	Phase    VideoPhase `json:"phase"`
	Message  string     `json:"message,omitempty"`
	Variant1 string     `json:"variant1,omitempty"`
	Variant2 string     `json:"variant2,omitempty"`
}

type SceneArtifact struct {
	Seq         int                     `json:"seq"`
	Description string                  `json:"description"`
	Script      string                  `json:"script"`
	Characters  []string                `json:"characters"`
	Image       []byte                  `json:"image,omitempty"`
	Prompt      *models.CinematicPrompt `json:"cinematicPrompt,omitempty"`
	Status      ArtifactStatus          `json:"status"`
	Video       VideoState              `json:"video"`
}

// IdeaConfig 一次运行的创意配置，运行开始后只读，除非回到 idea 阶段重新提交
type IdeaConfig struct {
	Idea            string   `json:"idea"`
	Genre           string   `json:"genre"`
	Style           string   `json:"style"`
	Language        string   `json:"language"`
	SceneCount      int      `json:"sceneCount"`
	CharacterRefIDs []string `json:"characterRefIds,omitempty"`
	LocationID      string   `json:"locationId,omitempty"`
}

// Run 一次流水线运行的全部内存态。持久化前 ProjectID 为空，
// 首次落库后 ProjectID 固定，后续所有局部写都指向它。
type Run struct {
	ID         string
	Stage      Stage
	Idea       IdeaConfig
	Characters []*CharacterArtifact
	Scenes     []*SceneArtifact
	Seo        *models.SeoBundle
	FullScript string
	ProjectID  string
	Progress   string

	busy       bool
	planScenes []PlanScene
	cancel     *CancelFlag

	mu   sync.Mutex
	subs map[chan RunSnapshot]struct{}
}

// RunSnapshot 推给进度 websocket 和查询接口的运行视图
type RunSnapshot struct {
	RunID      string               `json:"runId"`
	Stage      Stage                `json:"stage"`
	Progress   string               `json:"progress,omitempty"`
	ProjectID  string               `json:"projectId,omitempty"`
	Characters []*CharacterArtifact `json:"characters"`
	Scenes     []*SceneArtifact     `json:"scenes"`
	Seo        *models.SeoBundle    `json:"seoBundle,omitempty"`
	FullScript string               `json:"fullScript,omitempty"`
}

// ---- 运行注册表（按 run id 查取消标记与状态）----

var (
	runMu  sync.RWMutex
	runMap = make(map[string]*Run)
)

func NewRun() *Run {
	r := &Run{
		ID:     uuid.NewString(),
		Stage:  StageIdea,
		cancel: NewCancelFlag(),
		subs:   make(map[chan RunSnapshot]struct{}),
	}
	runMu.Lock()
	runMap[r.ID] = r
	runMu.Unlock()
	return r
}

func GetRun(id string) (*Run, bool) {
	runMu.RLock()
	defer runMu.RUnlock()
	r, ok := runMap[id]
	return r, ok
}

func RemoveRun(id string) {
	runMu.Lock()
	delete(runMap, id)
	runMu.Unlock()
}

// ---- 进度订阅 ----

// Subscribe 返回快照通道和退订函数，慢消费者丢帧不阻塞流水线
func (r *Run) Subscribe() (<-chan RunSnapshot, func()) {
	ch := make(chan RunSnapshot, 16)
	r.mu.Lock()
	r.subs[ch] = struct{}{}
	ch <- r.snapshotLocked()
	r.mu.Unlock()
	return ch, func() {
		r.mu.Lock()
		delete(r.subs, ch)
		r.mu.Unlock()
	}
}

// snapshotLocked 深拷贝产物列表：快照发给 websocket 后还会被并发序列化，
// 不能和流水线继续改写的状态共享内存。
func (r *Run) snapshotLocked() RunSnapshot {
	chars := make([]*CharacterArtifact, len(r.Characters))
	for i, c := range r.Characters {
		cc := *c
		chars[i] = &cc
	}
	scenes := make([]*SceneArtifact, len(r.Scenes))
	for i, s := range r.Scenes {
		sc := *s
		sc.Characters = append([]string(nil), s.Characters...)
		scenes[i] = &sc
	}
	return RunSnapshot{
		RunID:      r.ID,
		Stage:      r.Stage,
		Progress:   r.Progress,
		ProjectID:  r.ProjectID,
		Characters: chars,
		Scenes:     scenes,
		Seo:        r.Seo,
		FullScript: r.FullScript,
	}
}

func (r *Run) publishLocked() {
	snap := r.snapshotLocked()
	for ch := range r.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Run) setProgress(msg string) {
	r.mu.Lock()
	r.Progress = msg
	r.publishLocked()
	r.mu.Unlock()
}

// Cancel 置取消标记：打断后续循环迭代与退避等待，已发出的调用照常完成
func (r *Run) Cancel() {
	r.mu.Lock()
	c := r.cancel
	r.mu.Unlock()
	c.Cancel()
}

// ---- 流水线 ----

// Pipeline 按依赖注入组装的流水线编排器
type Pipeline struct {
	Store     Store
	Providers Providers
	Objects   ObjectStore
	Gateway   *Gateway
	Resaver   Resaver
}

// Resaver 场景图重生成功后，对已持久化项目发起的后台补写
type Resaver interface {
	EnqueueResave(runID string) error
}

// beginTransition 占住整个运行做多步前进转换，并换新取消标记
func (r *Run) beginTransition(from Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Stage != from {
		return fmt.Errorf("当前阶段 %s 不允许该操作", r.Stage)
	}
	if r.busy {
		return fmt.Errorf("运行中已有转换在执行")
	}
	r.busy = true
	r.cancel = NewCancelFlag()
	return nil
}

func (r *Run) endTransition() {
	r.mu.Lock()
	r.busy = false
	r.Progress = ""
	r.publishLocked()
	r.mu.Unlock()
}

type SubmitIdeaRequest struct {
	Idea            string   `json:"idea" binding:"required"`
	Genre           string   `json:"genre"`
	Style           string   `json:"style"`
	Language        string   `json:"language"`
	SceneCount      int      `json:"sceneCount" binding:"required"`
	CharacterRefIDs []string `json:"characterRefIds"`
	LocationID      string   `json:"locationId"`
}

// SubmitIdea 提交创意：规划剧本（带角色引用走 hybrid 模式），逐个生成新角色
// 形象后进入角色确认；hybrid 规划若返回零新角色则直接跳到故事板确认。
func (p *Pipeline) SubmitIdea(ctx context.Context, r *Run, req SubmitIdeaRequest) error {
	if req.SceneCount < 1 || req.SceneCount > 30 {
		return fmt.Errorf("场景数必须在 1~30 之间，收到 %d", req.SceneCount)
	}
	if err := r.beginTransition(StageIdea); err != nil {
		return err
	}
	defer r.endTransition()

	cancel := r.cancel
	if cancel.Cancelled() {
		return ErrCancelled
	}

	// 解析库引用：角色形象与地点背景
	var existing []CharacterRef
	var refArtifacts []*CharacterArtifact
	for _, id := range req.CharacterRefIDs {
		a, err := p.Store.GetAvatarByID(id)
		if err != nil {
			return fmt.Errorf("查询素材库角色 %s 失败: %v", id, err)
		}
		existing = append(existing, CharacterRef{Name: a.Name, Image: a.Image})
		refArtifacts = append(refArtifacts, &CharacterArtifact{
			Name:        a.Name,
			Description: a.Description,
			Image:       a.Image,
			Provenance:  models.CharacterFromLibrary,
			LibraryID:   a.ID,
			Status:      StatusIdle,
		})
	}
	locationName := ""
	if req.LocationID != "" {
		loc, err := p.Store.GetLocationByID(req.LocationID)
		if err != nil {
			return fmt.Errorf("查询地点 %s 失败: %v", req.LocationID, err)
		}
		locationName = loc.Name
	}

	r.setProgress("正在规划剧本...")
	var plan *StoryPlan
	err := p.Gateway.Do(ctx, cancel, func(attempt, max int) {
		r.setProgress(fmt.Sprintf("剧本规划重试中 (%d/%d)", attempt, max))
	}, func() error {
		var err error
		plan, err = p.Providers.StoryPlan(ctx, StoryPlanRequest{
			Idea:               req.Idea,
			Style:              req.Style,
			Language:           req.Language,
			Genre:              req.Genre,
			SceneCount:         req.SceneCount,
			ExistingCharacters: existing,
			LocationName:       locationName,
		})
		return err
	})
	if err != nil {
		return err
	}

	hybrid := len(existing) > 0
	if !hybrid && len(plan.Characters) == 0 {
		return &ContractError{Msg: "完整规划必须返回至少一个角色"}
	}
	if len(plan.Storyboard) != req.SceneCount {
		return &ContractError{Msg: fmt.Sprintf("规划返回 %d 个场景，要求 %d 个", len(plan.Storyboard), req.SceneCount)}
	}

	newChars := make([]*CharacterArtifact, 0, len(plan.Characters))
	for _, c := range plan.Characters {
		newChars = append(newChars, &CharacterArtifact{
			Name:        c.Name,
			Description: c.Description,
			Provenance:  models.CharacterNewlyGenerated,
			Status:      StatusIdle,
		})
	}

	r.mu.Lock()
	r.Idea = IdeaConfig{
		Idea: req.Idea, Genre: req.Genre, Style: req.Style, Language: req.Language,
		SceneCount: req.SceneCount, CharacterRefIDs: req.CharacterRefIDs, LocationID: req.LocationID,
	}
	r.Characters = append(refArtifacts, newChars...)
	r.planScenes = plan.Storyboard
	r.publishLocked()
	r.mu.Unlock()

	if hybrid && len(newChars) == 0 {
		// 无新角色：跳过角色确认，直接初始化场景进入故事板确认
		r.mu.Lock()
		r.Scenes = buildScenes(r.planScenes)
		r.Stage = StageStoryboardApproval
		r.publishLocked()
		r.mu.Unlock()
		return nil
	}

	// 顺序生成新角色形象，单线程串行压住后端负载
	for i, c := range newChars {
		if cancel.Cancelled() {
			return ErrCancelled
		}
		r.setProgress(fmt.Sprintf("正在生成角色形象 %s (%d/%d)", c.Name, i+1, len(newChars)))
		var img []byte
		err := p.Gateway.Do(ctx, cancel, func(attempt, max int) {
			r.setProgress(fmt.Sprintf("角色 %s 形象重试中 (%d/%d)", c.Name, attempt, max))
		}, func() error {
			var err error
			img, err = p.Providers.CharacterImage(ctx, c.Description, req.Style)
			return err
		})
		if err != nil {
			// 失败不推进阶段，已生成的形象保留在内存
			return fmt.Errorf("生成角色 %s 形象失败: %w", c.Name, err)
		}
		r.mu.Lock()
		c.Image = img
		r.publishLocked()
		r.mu.Unlock()
	}

	r.mu.Lock()
	r.Stage = StageCharacterApproval
	r.publishLocked()
	r.mu.Unlock()
	return nil
}

func buildScenes(plan []PlanScene) []*SceneArtifact {
	scenes := make([]*SceneArtifact, 0, len(plan))
	for i, s := range plan {
		scenes = append(scenes, &SceneArtifact{
			Seq:         i + 1,
			Description: s.Description,
			Script:      s.Script,
			Characters:  s.CharactersInScene,
			Status:      StatusIdle,
			Video:       VideoState{Phase: VideoIdle},
		})
	}
	return scenes
}

// ConfirmCharacters 把新生成的角色沉淀进素材库（重名跳过，不区分大小写），
// 初始化全部场景记录，进入故事板确认。
func (p *Pipeline) ConfirmCharacters(ctx context.Context, r *Run) error {
	if err := r.beginTransition(StageCharacterApproval); err != nil {
		return err
	}
	defer r.endTransition()

	// 先在锁内取副本，库操作放锁外，写回 LibraryID 时再短暂持锁：
	// 快照随时可能在并发地复制这些结构
	type pendingCharacter struct {
		c           *CharacterArtifact
		name        string
		description string
		image       []byte
	}
	r.mu.Lock()
	var fresh []pendingCharacter
	for _, c := range r.Characters {
		if c.Provenance != models.CharacterNewlyGenerated {
			continue
		}
		fresh = append(fresh, pendingCharacter{c: c, name: c.Name, description: c.Description, image: c.Image})
	}
	r.mu.Unlock()

	for _, pc := range fresh {
		found, err := p.Store.FindAvatarByName(pc.name)
		if err != nil {
			return fmt.Errorf("查重角色 %s 失败: %v", pc.name, err)
		}
		libraryID := ""
		if found != nil {
			libraryID = found.ID
		} else {
			avatar := &models.Avatar{Name: pc.name, Description: pc.description, Image: pc.image}
			if err := p.Store.CreateAvatar(avatar); err != nil {
				return fmt.Errorf("角色 %s 入库失败: %v", pc.name, err)
			}
			libraryID = avatar.ID
		}
		r.mu.Lock()
		pc.c.LibraryID = libraryID
		r.mu.Unlock()
	}

	r.mu.Lock()
	r.Scenes = buildScenes(r.planScenes)
	r.Stage = StageStoryboardApproval
	r.publishLocked()
	r.mu.Unlock()
	return nil
}

// UpdateCharacterPrompt 重生成前编辑角色描述词，只改文本不动形象
func (r *Run) UpdateCharacterPrompt(index int, prompt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.Characters) {
		return fmt.Errorf("角色下标 %d 越界", index)
	}
	c := r.Characters[index]
	if c.Status != StatusIdle {
		return fmt.Errorf("角色 %s 正在生成中", c.Name)
	}
	c.Description = prompt
	r.publishLocked()
	return nil
}

// UpdateScene 编辑场景描述与口播脚本
func (r *Run) UpdateScene(seq int, description, script string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sceneLocked(seq)
	if s == nil {
		return fmt.Errorf("场景 %d 不存在", seq)
	}
	if s.Status != StatusIdle {
		return fmt.Errorf("场景 %d 正在生成中", seq)
	}
	s.Description = description
	s.Script = script
	r.publishLocked()
	return nil
}

func (r *Run) sceneLocked(seq int) *SceneArtifact {
	for _, s := range r.Scenes {
		if s.Seq == seq {
			return s
		}
	}
	return nil
}

// GenerateSceneImages 严格按场景序号升序逐张合成，每个场景开工前检查取消标记；
// 全部成功后进入场景图确认。
func (p *Pipeline) GenerateSceneImages(ctx context.Context, r *Run) error {
	if err := r.beginTransition(StageStoryboardApproval); err != nil {
		return err
	}
	defer r.endTransition()

	cancel := r.cancel
	for _, s := range r.Scenes {
		if cancel.Cancelled() {
			return ErrCancelled
		}
		refs, location, err := p.sceneComposeInputs(r, s)
		if err != nil {
			return err
		}
		r.setProgress(fmt.Sprintf("正在合成场景图 %d/%d", s.Seq, len(r.Scenes)))
		var img []byte
		err = p.Gateway.Do(ctx, cancel, func(attempt, max int) {
			r.setProgress(fmt.Sprintf("场景 %d 合成重试中 (%d/%d)", s.Seq, attempt, max))
		}, func() error {
			var err error
			img, err = p.Providers.SceneImage(ctx, refs, s.Description, r.Idea.Style, location)
			return err
		})
		if err != nil {
			return fmt.Errorf("合成场景 %d 失败: %w", s.Seq, err)
		}
		r.mu.Lock()
		s.Image = img
		r.publishLocked()
		r.mu.Unlock()
	}

	r.mu.Lock()
	r.Stage = StageSceneImageApproval
	r.publishLocked()
	r.mu.Unlock()
	return nil
}

// sceneComposeInputs 按当前状态（而非快照）取该场景出场角色的形象与地点背景，
// 使得稍后的提示词编辑或地点改选在重生成时立即生效。
func (p *Pipeline) sceneComposeInputs(r *Run, s *SceneArtifact) ([]CharacterRef, []byte, error) {
	r.mu.Lock()
	refs := make([]CharacterRef, 0, len(s.Characters))
	for _, name := range s.Characters {
		for _, c := range r.Characters {
			if strings.EqualFold(c.Name, name) {
				refs = append(refs, CharacterRef{Name: c.Name, Image: c.Image})
				break
			}
		}
	}
	locationID := r.Idea.LocationID
	r.mu.Unlock()

	var location []byte
	if locationID != "" {
		loc, err := p.Store.GetLocationByID(locationID)
		if err != nil {
			return nil, nil, fmt.Errorf("查询地点 %s 失败: %v", locationID, err)
		}
		location = loc.Image
	}
	return refs, location, nil
}

// Finalize 为每个场景生成电影化提示词，再生成 SEO 包，随后整体落库：
// 项目首次落库由仓储层分配身份，角色挂到该身份下持久化，进入完成态。
func (p *Pipeline) Finalize(ctx context.Context, r *Run) error {
	if err := r.beginTransition(StageSceneImageApproval); err != nil {
		return err
	}
	defer r.endTransition()

	cancel := r.cancel
	for _, s := range r.Scenes {
		if cancel.Cancelled() {
			return ErrCancelled
		}
		if s.Prompt != nil {
			continue // 上次中断时已生成的保留复用
		}
		r.setProgress(fmt.Sprintf("正在生成场景 %d 电影化提示词", s.Seq))
		var cp *models.CinematicPrompt
		err := p.Gateway.Do(ctx, cancel, func(attempt, max int) {
			r.setProgress(fmt.Sprintf("场景 %d 提示词重试中 (%d/%d)", s.Seq, attempt, max))
		}, func() error {
			var err error
			cp, err = p.Providers.CinematicPrompt(ctx, s.Description, s.Script, r.Idea.Style)
			return err
		})
		if err != nil {
			return fmt.Errorf("生成场景 %d 提示词失败: %w", s.Seq, err)
		}
		r.mu.Lock()
		s.Prompt = cp
		r.publishLocked()
		r.mu.Unlock()
	}

	if cancel.Cancelled() {
		return ErrCancelled
	}
	scripts := make([]string, 0, len(r.Scenes))
	for _, s := range r.Scenes {
		scripts = append(scripts, s.Script)
	}
	fullScript := strings.Join(scripts, "\n\n")

	r.setProgress("正在生成 SEO 元数据...")
	seoContext := fmt.Sprintf("创意: %s\n类型: %s\n\n%s", r.Idea.Idea, r.Idea.Genre, fullScript)
	var seo *models.SeoBundle
	err := p.Gateway.Do(ctx, cancel, func(attempt, max int) {
		r.setProgress(fmt.Sprintf("SEO 生成重试中 (%d/%d)", attempt, max))
	}, func() error {
		var err error
		seo, err = p.Providers.SeoBundle(ctx, seoContext, r.Idea.Language)
		return err
	})
	if err != nil {
		return fmt.Errorf("生成 SEO 元数据失败: %w", err)
	}

	r.mu.Lock()
	r.Seo = seo
	r.FullScript = fullScript
	records := r.sceneRecordsLocked()
	project := &models.Project{
		ID:        r.ProjectID,
		Idea:      r.Idea.Idea,
		Genre:     r.Idea.Genre,
		Language:  r.Idea.Language,
		Style:     r.Idea.Style,
		SeoBundle: *seo,
	}
	r.mu.Unlock()

	r.setProgress("正在保存项目...")
	if r.ProjectID == "" {
		if err := p.Store.CreateProject(project, records); err != nil {
			return fmt.Errorf("保存项目失败: %v", err)
		}
		r.mu.Lock()
		r.ProjectID = project.ID
		r.mu.Unlock()
	} else {
		// 上次保存已分配身份，重复完成只整体重写场景行
		if err := p.Store.ReplaceProjectScenes(r.ProjectID, records); err != nil {
			return fmt.Errorf("重写项目场景失败: %v", err)
		}
	}

	// 角色逐个落库，已入库的跳过：上次中断后重试要把剩下的补齐，
	// 全部角色都挂在项目身份下才算完成
	for _, c := range r.Characters {
		if c.saved {
			continue
		}
		if err := p.Store.CreateCharacter(&models.Character{
			ProjectID:   r.ProjectID,
			Name:        c.Name,
			Description: c.Description,
			Image:       c.Image,
			Provenance:  c.Provenance,
		}); err != nil {
			return fmt.Errorf("保存角色 %s 失败: %v", c.Name, err)
		}
		r.mu.Lock()
		c.saved = true
		r.mu.Unlock()
	}

	r.mu.Lock()
	r.Stage = StageFinal
	r.publishLocked()
	r.mu.Unlock()
	log.Printf("流水线完成, run=%s project=%s", r.ID, r.ProjectID)
	return nil
}

func (r *Run) sceneRecordsLocked() []models.SceneRecord {
	records := make([]models.SceneRecord, 0, len(r.Scenes))
	for _, s := range r.Scenes {
		records = append(records, models.SceneRecord{
			Seq:         s.Seq,
			Description: s.Description,
			Script:      s.Script,
			Characters:  models.StringList(s.Characters),
			Image:       s.Image,
			VeoPrompt:   s.Prompt,
		})
	}
	return records
}

// SceneRecords 导出当前场景的持久化形态，供后台补写消费者使用
func (r *Run) SceneRecords() []models.SceneRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sceneRecordsLocked()
}

// Back 回到更早阶段。前方阶段已产出的内存产物全部保留，重新前进时覆盖。
func (r *Run) Back(target Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	to, ok := stageOrder[target]
	if !ok {
		return fmt.Errorf("未知阶段 %s", target)
	}
	if r.busy {
		return fmt.Errorf("运行中已有转换在执行")
	}
	if to >= stageOrder[r.Stage] {
		return fmt.Errorf("只能回到 %s 之前的阶段", r.Stage)
	}
	r.Stage = target
	r.publishLocked()
	return nil
}

// Reset 清空运行回到初始阶段，保留 run id。转换进行中不允许重置，
// 否则在跑的转换会继续改写清空后的状态并把阶段推进到前方
func (r *Run) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		return fmt.Errorf("运行中已有转换在执行")
	}
	r.Stage = StageIdea
	r.Idea = IdeaConfig{}
	r.Characters = nil
	r.Scenes = nil
	r.planScenes = nil
	r.Seo = nil
	r.FullScript = ""
	r.ProjectID = ""
	r.Progress = ""
	r.cancel = NewCancelFlag()
	r.publishLocked()
	return nil
}
