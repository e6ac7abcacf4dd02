package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IdeaToVideo-server/models"
)

// ---- 测试替身 ----

type fakeProviders struct {
	mu         sync.Mutex
	planFn     func(req StoryPlanRequest) (*StoryPlan, error)
	charFn     func(description string) ([]byte, error)
	sceneFn    func(description string) ([]byte, error)
	promptFn   func(description string) (*models.CinematicPrompt, error)
	variantsFn func(description string) ([]string, error)
	videoFn    func(prompt string) ([]byte, error)
	ttsFn      func(text string) ([]byte, error)
	seoFn      func(promptContext string) (*models.SeoBundle, error)
	calls      []string
}

func (f *fakeProviders) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeProviders) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeProviders) StoryPlan(ctx context.Context, req StoryPlanRequest) (*StoryPlan, error) {
	f.record("plan")
	if f.planFn != nil {
		return f.planFn(req)
	}
	return defaultPlan(2, req.SceneCount), nil
}

func defaultPlan(charCount, sceneCount int) *StoryPlan {
	plan := &StoryPlan{}
	for i := 0; i < charCount; i++ {
		plan.Characters = append(plan.Characters, CharacterDef{
			Name:        fmt.Sprintf("角色%d", i+1),
			Description: fmt.Sprintf("角色%d 的设定", i+1),
		})
	}
	for i := 0; i < sceneCount; i++ {
		plan.Storyboard = append(plan.Storyboard, PlanScene{
			Description:       fmt.Sprintf("场景%d 画面", i+1),
			Script:            fmt.Sprintf("场景%d 台词", i+1),
			CharactersInScene: []string{"角色1"},
		})
	}
	return plan
}

func (f *fakeProviders) CharacterImage(ctx context.Context, description, style string) ([]byte, error) {
	f.record("character_image")
	if f.charFn != nil {
		return f.charFn(description)
	}
	return []byte("img:" + description), nil
}

func (f *fakeProviders) SceneImage(ctx context.Context, refs []CharacterRef, description, style string, location []byte) ([]byte, error) {
	f.record("scene_image")
	if f.sceneFn != nil {
		return f.sceneFn(description)
	}
	return []byte("scene:" + description), nil
}

func (f *fakeProviders) CinematicPrompt(ctx context.Context, description, script, style string) (*models.CinematicPrompt, error) {
	f.record("cinematic_prompt")
	if f.promptFn != nil {
		return f.promptFn(description)
	}
	return &models.CinematicPrompt{MainPrompt: "main:" + description, NegativePrompt: "neg"}, nil
}

func (f *fakeProviders) VideoPromptVariants(ctx context.Context, description string) ([]string, error) {
	f.record("video_prompts")
	if f.variantsFn != nil {
		return f.variantsFn(description)
	}
	return []string{"动作A", "动作B"}, nil
}

func (f *fakeProviders) ImageToVideo(ctx context.Context, image []byte, prompt string) ([]byte, error) {
	f.record("image_to_video")
	if f.videoFn != nil {
		return f.videoFn(prompt)
	}
	return []byte("video:" + prompt), nil
}

func (f *fakeProviders) TextToSpeech(ctx context.Context, text, voice string, rate float64) ([]byte, error) {
	f.record("tts")
	if f.ttsFn != nil {
		return f.ttsFn(text)
	}
	return []byte{0x11, 0x22}, nil
}

func (f *fakeProviders) SeoBundle(ctx context.Context, promptContext, language string) (*models.SeoBundle, error) {
	f.record("seo")
	if f.seoFn != nil {
		return f.seoFn(promptContext)
	}
	return &models.SeoBundle{
		Title: "标题",
		Platforms: map[string]models.SeoPlatform{
			"youtube": {Description: "desc", Hashtags: []string{"#tag"}},
		},
	}, nil
}

type fakeStore struct {
	mu                 sync.Mutex
	avatars            []models.Avatar
	locations          []models.Location
	projects           map[string]*models.Project
	projectScenes      map[string][]models.SceneRecord
	characters         []models.Character
	videoHistory       []models.VideoHistory
	audioHistory       []models.AudioHistory
	createProjectCalls int
	charCreateCalls    int
	charCreateFailAt   int // 第 N 次 CreateCharacter 注入失败，0 表示不注入
	videoHistoryErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:      make(map[string]*models.Project),
		projectScenes: make(map[string][]models.SceneRecord),
	}
}

func (f *fakeStore) ListAvatars() ([]models.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Avatar(nil), f.avatars...), nil
}

func (f *fakeStore) GetAvatarByID(id string) (*models.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.avatars {
		if f.avatars[i].ID == id {
			a := f.avatars[i]
			return &a, nil
		}
	}
	return nil, fmt.Errorf("avatar %s not found", id)
}

func (f *fakeStore) FindAvatarByName(name string) (*models.Avatar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.avatars {
		if strings.EqualFold(f.avatars[i].Name, name) {
			a := f.avatars[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateAvatar(a *models.Avatar) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.avatars = append(f.avatars, *a)
	return nil
}

func (f *fakeStore) ListLocations() ([]models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Location(nil), f.locations...), nil
}

func (f *fakeStore) GetLocationByID(id string) (*models.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.locations {
		if f.locations[i].ID == id {
			l := f.locations[i]
			return &l, nil
		}
	}
	return nil, fmt.Errorf("location %s not found", id)
}

func (f *fakeStore) CreateProject(p *models.Project, scenes []models.SceneRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createProjectCalls++
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	f.projects[p.ID] = p
	f.projectScenes[p.ID] = scenes
	return nil
}

func (f *fakeStore) ReplaceProjectScenes(projectID string, scenes []models.SceneRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectScenes[projectID] = scenes
	return nil
}

func (f *fakeStore) CreateCharacter(c *models.Character) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.charCreateCalls++
	if f.charCreateFailAt > 0 && f.charCreateCalls == f.charCreateFailAt {
		return fmt.Errorf("character insert failed")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	f.characters = append(f.characters, *c)
	return nil
}

func (f *fakeStore) CreateVideoHistories(items []models.VideoHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.videoHistoryErr != nil {
		return f.videoHistoryErr
	}
	f.videoHistory = append(f.videoHistory, items...)
	return nil
}

func (f *fakeStore) CreateAudioHistory(h *models.AudioHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audioHistory = append(f.audioHistory, *h)
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeObjects) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[objectName] = data
	return "minio://test/" + objectName, nil
}

type fakeResaver struct {
	mu     sync.Mutex
	runIDs []string
}

func (f *fakeResaver) EnqueueResave(runID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runIDs = append(f.runIDs, runID)
	return nil
}

func newTestPipeline() (*Pipeline, *fakeProviders, *fakeStore, *fakeObjects, *fakeResaver) {
	providers := &fakeProviders{}
	store := newFakeStore()
	objects := &fakeObjects{}
	resaver := &fakeResaver{}
	p := &Pipeline{
		Store:     store,
		Providers: providers,
		Objects:   objects,
		Gateway:   &Gateway{MaxAttempts: 5, BaseDelay: time.Millisecond},
		Resaver:   resaver,
	}
	return p, providers, store, objects, resaver
}

func submitReq(sceneCount int) SubmitIdeaRequest {
	return SubmitIdeaRequest{
		Idea:       "两个朋友发现宝藏",
		Genre:      "Adventure",
		Style:      "cinematic",
		Language:   "zh",
		SceneCount: sceneCount,
	}
}

// ---- 流水线转换 ----

func TestSubmitIdeaSceneCounts(t *testing.T) {
	for _, n := range []int{1, 3, 15, 30} {
		p, _, _, _, _ := newTestPipeline()
		run := NewRun()
		defer RemoveRun(run.ID)

		require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(n)))
		assert.Equal(t, StageCharacterApproval, run.Snapshot().Stage)

		require.NoError(t, p.ConfirmCharacters(context.Background(), run))
		snap := run.Snapshot()
		assert.Equal(t, StageStoryboardApproval, snap.Stage)
		require.Len(t, snap.Scenes, n)
		for i, s := range snap.Scenes {
			assert.Equal(t, i+1, s.Seq)
		}
	}
}

func TestSubmitIdeaRejectsBadSceneCount(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)

	assert.Error(t, p.SubmitIdea(context.Background(), run, submitReq(0)))
	assert.Error(t, p.SubmitIdea(context.Background(), run, submitReq(31)))
	assert.Equal(t, 0, providers.callCount("plan"))
}

func TestHybridZeroNewCharactersSkipsApproval(t *testing.T) {
	p, providers, store, _, _ := newTestPipeline()
	store.avatars = []models.Avatar{{ID: "av1", Name: "老角色", Image: []byte("old")}}
	providers.planFn = func(req StoryPlanRequest) (*StoryPlan, error) {
		// hybrid 模式只返回新增角色，这里一个都不新增
		plan := defaultPlan(0, req.SceneCount)
		for i := range plan.Storyboard {
			plan.Storyboard[i].CharactersInScene = []string{"老角色"}
		}
		return plan, nil
	}

	run := NewRun()
	defer RemoveRun(run.ID)
	req := submitReq(3)
	req.CharacterRefIDs = []string{"av1"}

	require.NoError(t, p.SubmitIdea(context.Background(), run, req))
	snap := run.Snapshot()
	assert.Equal(t, StageStoryboardApproval, snap.Stage)
	require.Len(t, snap.Scenes, 3)
	require.Len(t, snap.Characters, 1)
	assert.Equal(t, models.CharacterFromLibrary, snap.Characters[0].Provenance)
	assert.Equal(t, 0, providers.callCount("character_image"))
}

func TestSubmitIdeaFullModeRequiresCharacters(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	providers.planFn = func(req StoryPlanRequest) (*StoryPlan, error) {
		return defaultPlan(0, req.SceneCount), nil
	}
	run := NewRun()
	defer RemoveRun(run.ID)

	err := p.SubmitIdea(context.Background(), run, submitReq(2))
	require.Error(t, err)
	var ce *ContractError
	assert.ErrorAs(t, err, &ce)
	assert.Equal(t, StageIdea, run.Snapshot().Stage)
}

func TestSubmitIdeaFailureKeepsPartialImages(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	providers.charFn = func(description string) ([]byte, error) {
		if description == "角色2 的设定" {
			return nil, &ContractError{Msg: "bad image"}
		}
		return []byte("img"), nil
	}
	run := NewRun()
	defer RemoveRun(run.ID)

	err := p.SubmitIdea(context.Background(), run, submitReq(2))
	require.Error(t, err)
	snap := run.Snapshot()
	// 阶段不推进，但已生成的第一个形象保留
	assert.Equal(t, StageIdea, snap.Stage)
	require.Len(t, snap.Characters, 2)
	assert.NotEmpty(t, snap.Characters[0].Image)
	assert.Empty(t, snap.Characters[1].Image)

	// busy 一定被清掉，下一次转换可以发起
	providers.charFn = nil
	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(2)))
}

func TestCancelDuringCharacterGeneration(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)
	providers.charFn = func(description string) ([]byte, error) {
		run.Cancel() // 第一个形象生成期间用户点了取消
		return []byte("img"), nil
	}

	err := p.SubmitIdea(context.Background(), run, submitReq(2))
	assert.ErrorIs(t, err, ErrCancelled)
	snap := run.Snapshot()
	assert.Equal(t, StageIdea, snap.Stage)
	// 循环头检查取消：第二个角色的调用不会发出
	assert.Equal(t, 1, providers.callCount("character_image"))
	assert.NotEmpty(t, snap.Characters[0].Image)
}

func TestCancelBeforeFirstCapabilityCall(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)
	providers.planFn = func(req StoryPlanRequest) (*StoryPlan, error) {
		run.Cancel() // 规划返回前取消：角色形象一张都不生成
		return defaultPlan(2, req.SceneCount), nil
	}

	err := p.SubmitIdea(context.Background(), run, submitReq(2))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, providers.callCount("character_image"))
}

func TestConfirmCharactersDedupesLibrary(t *testing.T) {
	p, _, store, _, _ := newTestPipeline()
	store.avatars = []models.Avatar{{ID: "av1", Name: "角色1"}} // 与计划角色重名
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(3)))
	require.NoError(t, p.ConfirmCharacters(context.Background(), run))

	// 重名的不再入库，只新增角色2
	require.Len(t, store.avatars, 2)
	assert.Equal(t, "角色2", store.avatars[1].Name)

	snap := run.Snapshot()
	assert.Equal(t, "av1", snap.Characters[0].LibraryID)
	require.Len(t, snap.Scenes, 3)
}

func TestGenerateSceneImagesInOrder(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	var order []string
	var mu sync.Mutex
	providers.sceneFn = func(description string) ([]byte, error) {
		mu.Lock()
		order = append(order, description)
		mu.Unlock()
		return []byte("scene"), nil
	}
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(3)))
	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	require.NoError(t, p.GenerateSceneImages(context.Background(), run))

	snap := run.Snapshot()
	assert.Equal(t, StageSceneImageApproval, snap.Stage)
	assert.Equal(t, []string{"场景1 画面", "场景2 画面", "场景3 画面"}, order)
	for _, s := range snap.Scenes {
		assert.NotEmpty(t, s.Image)
	}
}

func TestFinalizeAssignsStableProjectIdentity(t *testing.T) {
	p, _, store, _, resaver := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(3)))
	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	require.NoError(t, p.GenerateSceneImages(context.Background(), run))
	require.NoError(t, p.Finalize(context.Background(), run))

	snap := run.Snapshot()
	require.Equal(t, StageFinal, snap.Stage)
	require.NotEmpty(t, snap.ProjectID)
	assert.Equal(t, 1, store.createProjectCalls)
	assert.NotNil(t, snap.Seo)
	for _, s := range snap.Scenes {
		require.NotNil(t, s.Prompt)
	}
	// 角色挂在项目身份下持久化
	require.Len(t, store.characters, 2)
	for _, c := range store.characters {
		assert.Equal(t, snap.ProjectID, c.ProjectID)
	}
	assert.Contains(t, snap.FullScript, "场景1 台词")
	assert.Contains(t, snap.FullScript, "\n\n")

	// 此后的场景图重生成触发后台补写，指向同一身份
	require.NoError(t, p.RegenerateSceneImage(context.Background(), run, 2))
	require.Len(t, resaver.runIDs, 1)
	assert.Equal(t, run.ID, resaver.runIDs[0])
	assert.Equal(t, snap.ProjectID, run.Snapshot().ProjectID)
}

func TestFinalizeSeoFailureKeepsPrompts(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	providers.seoFn = func(promptContext string) (*models.SeoBundle, error) {
		return nil, &ContractError{Msg: "seo broken"}
	}
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(2)))
	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	require.NoError(t, p.GenerateSceneImages(context.Background(), run))

	err := p.Finalize(context.Background(), run)
	require.Error(t, err)
	snap := run.Snapshot()
	// 阶段不动，已生成的提示词保留，重试时直接复用
	assert.Equal(t, StageSceneImageApproval, snap.Stage)
	for _, s := range snap.Scenes {
		require.NotNil(t, s.Prompt)
	}
	assert.Empty(t, snap.ProjectID)

	providers.seoFn = nil
	before := providers.callCount("cinematic_prompt")
	require.NoError(t, p.Finalize(context.Background(), run))
	assert.Equal(t, before, providers.callCount("cinematic_prompt"))
}

func TestFinalizeRetryPersistsRemainingCharacters(t *testing.T) {
	p, _, store, _, _ := newTestPipeline()
	store.charCreateFailAt = 2 // 第一次完成时角色2 落库失败
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(2)))
	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	require.NoError(t, p.GenerateSceneImages(context.Background(), run))

	err := p.Finalize(context.Background(), run)
	require.Error(t, err)
	snap := run.Snapshot()
	assert.Equal(t, StageSceneImageApproval, snap.Stage)
	require.NotEmpty(t, snap.ProjectID) // 身份在第一次尝试已分配
	require.Len(t, store.characters, 1)

	// 重试补齐剩余角色，已入库的不重复
	require.NoError(t, p.Finalize(context.Background(), run))
	assert.Equal(t, StageFinal, run.Snapshot().Stage)
	require.Len(t, store.characters, 2)
	names := map[string]bool{}
	for _, c := range store.characters {
		assert.Equal(t, snap.ProjectID, c.ProjectID)
		names[c.Name] = true
	}
	assert.Len(t, names, 2)
	assert.Equal(t, 1, store.createProjectCalls)
}

func TestConfirmCharactersConcurrentSnapshots(t *testing.T) {
	p, _, _, _, _ := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)
	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(2)))

	// 确认转换期间持续拉快照，LibraryID 写回必须在锁内
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				run.Snapshot()
			}
		}
	}()

	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	close(stop)
	wg.Wait()

	for _, c := range run.Snapshot().Characters {
		assert.NotEmpty(t, c.LibraryID)
	}
}

func TestResetRejectedWhileTransitionInFlight(t *testing.T) {
	p, providers, _, _, _ := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)

	started := make(chan struct{})
	hold := make(chan struct{})
	var once sync.Once
	providers.charFn = func(description string) ([]byte, error) {
		once.Do(func() { close(started) })
		<-hold
		return []byte("img"), nil
	}

	done := make(chan error, 1)
	go func() {
		done <- p.SubmitIdea(context.Background(), run, submitReq(2))
	}()
	<-started

	// 转换在跑时重置被拒绝，不能清空正被改写的状态
	require.Error(t, run.Reset())

	close(hold)
	require.NoError(t, <-done)
	assert.Equal(t, StageCharacterApproval, run.Snapshot().Stage)

	require.NoError(t, run.Reset())
	snap := run.Snapshot()
	assert.Equal(t, StageIdea, snap.Stage)
	assert.Empty(t, snap.Characters)
}

func TestBackRetainsForwardArtifacts(t *testing.T) {
	p, _, _, _, _ := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(2)))
	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	require.NoError(t, p.GenerateSceneImages(context.Background(), run))

	require.NoError(t, run.Back(StageStoryboardApproval))
	snap := run.Snapshot()
	assert.Equal(t, StageStoryboardApproval, snap.Stage)
	for _, s := range snap.Scenes {
		assert.NotEmpty(t, s.Image) // 前方产物保留
	}

	assert.Error(t, run.Back(StageFinal))
	assert.Error(t, run.Back(StageStoryboardApproval))
}

func TestUpdateSceneAndCharacterPrompt(t *testing.T) {
	p, _, _, _, _ := newTestPipeline()
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(2)))
	require.NoError(t, run.UpdateCharacterPrompt(0, "新的设定"))
	assert.Equal(t, "新的设定", run.Snapshot().Characters[0].Description)
	assert.Error(t, run.UpdateCharacterPrompt(9, "越界"))

	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	require.NoError(t, run.UpdateScene(1, "新画面", "新台词"))
	snap := run.Snapshot()
	assert.Equal(t, "新画面", snap.Scenes[0].Description)
	assert.Equal(t, "新台词", snap.Scenes[0].Script)
	assert.Error(t, run.UpdateScene(99, "x", "y"))
}

func TestGenerateVoiceover(t *testing.T) {
	p, providers, store, objects, _ := newTestPipeline()
	providers.ttsFn = func(text string) ([]byte, error) {
		assert.Contains(t, text, "Speak with a dramatic tone:")
		return []byte{0x01, 0x02, 0x03, 0x04}, nil
	}
	run := NewRun()
	defer RemoveRun(run.ID)

	require.NoError(t, p.SubmitIdea(context.Background(), run, submitReq(2)))
	require.NoError(t, p.ConfirmCharacters(context.Background(), run))
	require.NoError(t, p.GenerateSceneImages(context.Background(), run))
	require.NoError(t, p.Finalize(context.Background(), run))

	url, err := p.GenerateVoiceover(context.Background(), run, VoiceoverRequest{
		Voice: "zh-CN-1", Style: "dramatic",
	})
	require.NoError(t, err)
	assert.Contains(t, url, "minio://test/projects/")

	require.Len(t, store.audioHistory, 1)
	h := store.audioHistory[0]
	assert.Equal(t, run.Snapshot().ProjectID, h.ProjectID)
	assert.Equal(t, 1.0, h.SpeakingRate)

	// 上传的对象是封装后的 WAV：4 字节采样 + 44 字节头
	for name, data := range objects.objects {
		assert.Contains(t, name, ".wav")
		assert.Len(t, data, 48)
	}
}
