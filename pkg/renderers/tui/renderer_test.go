package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/schema"
	"github.com/goliatone/go-orderform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	selectMsgs   []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	s.selectMsgs = append(s.selectMsgs, cfg.Message)
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newWizard(t *testing.T, driver PromptDriver, opts ...Option) *Renderer {
	t.Helper()
	base := []Option{
		WithPromptDriver(driver),
		WithClock(func() time.Time { return fixedNow }),
		WithLocalZone("UTC"),
		WithZones([]string{"UTC", "America/New_York"}),
	}
	r, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return r
}

func scriptedOrder() *stubDriver {
	return &stubDriver{
		// topic, pages, deadline date, deadline time, attachment (finish)
		inputs: []string{"Climate change", "5", "2026-03-11", "12:00", ""},
		// tier, paper_type, spacing, timezone, payment
		selectIdx: []int{1, 1, 0, 1, 1},
		multiIdx:  [][]int{{1}},
		// instructions, notes
		textAreas: []string{"Cite sources", " Use APA "},
	}
}

func TestCollect_WalksEveryInput(t *testing.T) {
	driver := scriptedOrder()
	r := newWizard(t, driver)

	answers, err := r.Collect(context.Background(), testsupport.FormConfig(t), Answers{})
	require.NoError(t, err)

	assert.Equal(t, schema.ID("2"), answers.PricingTierID)
	assert.Equal(t, schema.ID("paypal"), answers.PaymentMethodID)
	assert.Equal(t, "Climate change", answers.FormData["topic"])
	assert.Equal(t, 5, answers.FormData["pages"])
	assert.Equal(t, "research", answers.FormData["paper_type"])
	assert.Equal(t, []string{"outline"}, answers.FormData["extras"])
	assert.Equal(t, "Cite sources", answers.FormData["instructions"])
	assert.Equal(t, "Use APA", answers.CustomerNotes)
	assert.Equal(t, deadline.Selection{Date: "2026-03-11", Time: "12:00", Timezone: "America/New_York"}, answers.Deadline)

	assert.Equal(t, []string{"Academic level", "Paper type", "Spacing", "Deadline timezone", "Payment method"}, driver.selectMsgs)
	require.NotEmpty(t, driver.infoMessages)
	assert.Contains(t, driver.infoMessages[len(driver.infoMessages)-1], "in your local time (UTC)")
}

func TestCollect_RepromptsTooSoonDeadline(t *testing.T) {
	driver := scriptedOrder()
	driver.inputs = []string{"Climate change", "5", "2026-03-10", "08:30", "13:00", ""}
	r := newWizard(t, driver)

	answers, err := r.Collect(context.Background(), testsupport.FormConfig(t), Answers{})
	require.NoError(t, err)

	assert.Equal(t, "13:00", answers.Deadline.Time)
	assert.Contains(t, driver.infoMessages, "✗ Please choose a deadline at least 1 hour from now")
}

func TestCollect_StagesFilesThroughCollector(t *testing.T) {
	driver := scriptedOrder()
	driver.inputs = []string{"Climate change", "5", "2026-03-11", "12:00", "/does/not/exist.pdf", ""}
	collector := attachments.NewCollector()
	r := newWizard(t, driver, WithCollector(collector))

	answers, err := r.Collect(context.Background(), testsupport.FormConfig(t), Answers{})
	require.NoError(t, err)

	assert.Empty(t, answers.Files)
	assert.Equal(t, 0, collector.Len())
	assert.Contains(t, driver.infoMessages, "✗ Cannot read /does/not/exist.pdf")
}

func TestCollect_NoTiers(t *testing.T) {
	r := newWizard(t, &stubDriver{})
	_, err := r.Collect(context.Background(), schema.FormConfig{}, Answers{})
	assert.ErrorIs(t, err, ErrNoOptions)
}

func TestCollect_PropagatesAbort(t *testing.T) {
	r := newWizard(t, &stubDriver{})
	_, err := r.Collect(context.Background(), testsupport.FormConfig(t), Answers{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no select scripted")
}

func TestRender_JSONOutput(t *testing.T) {
	r := newWizard(t, scriptedOrder())

	out, err := r.Render(context.Background(), render.Page{Config: testsupport.FormConfig(t)}, render.RenderOptions{})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(out, &payload))
	assert.Equal(t, float64(2), payload["pricing_tier_id"])
	formData := payload["form_data"].(map[string]any)
	assert.Equal(t, float64(5), formData["pages"])
	assert.Equal(t, "application/json", r.ContentType())
}

func TestRender_PrettyOutput(t *testing.T) {
	driver := scriptedOrder()
	r := newWizard(t, driver, WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), render.Page{Config: testsupport.FormConfig(t)}, render.RenderOptions{
		Errors: map[string][]string{"pages": {"Too many"}},
	})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "Academic level: Undergraduate\n")
	assert.Contains(t, text, "Paper type: Research paper\n")
	assert.Contains(t, text, "Extras: Outline\n")
	assert.Contains(t, text, "Deadline: 2026-03-11 12:00 (America/New_York)\n")
	assert.Contains(t, text, "Payment method: PayPal\n")
	assert.True(t, strings.HasPrefix(driver.infoMessages[0], "✗ pages: Too many"))
}

func TestNumberValidator(t *testing.T) {
	cfg := testsupport.FormConfig(t)
	pages, _ := cfg.Field("pages")
	validate := numberValidator(pages)

	assert.NoError(t, validate("5"))
	assert.Error(t, validate(""))
	assert.Error(t, validate("0"))
	assert.Error(t, validate("201"))
	assert.Error(t, validate("five"))
}

func TestChoiceOptions_PriceHints(t *testing.T) {
	cfg := testsupport.FormConfig(t)
	r := newWizard(t, &stubDriver{})

	extras, _ := cfg.Field("extras")
	options, offset := choiceOptions(extras, r)
	assert.Equal(t, 0, offset)
	assert.Equal(t, []string{"Plagiarism report (+$9.99)", "Outline (+$5.00)"}, options)

	spacing, _ := cfg.Field("spacing")
	options, offset = choiceOptions(spacing, r)
	assert.Equal(t, 1, offset)
	assert.Equal(t, []string{"(none)", "Double", "Single (×2)"}, options)
}
