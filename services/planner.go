package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/Rahel786/QuickHire-sub000/models"
)

// PlanRequest describes the plan a user asked for.
type PlanRequest struct {
	TargetRole    string
	DurationWeeks int
	Skills        []string
	CurrentLevel  string
}

// GeneratedPlan is the reshaped reply of a PlanGenerator.
type GeneratedPlan struct {
	Title string
	Weeks []models.PlanWeek
}

// PlanGenerator drafts a learning plan.
type PlanGenerator interface {
	Generate(ctx context.Context, req PlanRequest) (*GeneratedPlan, error)
}

// DefaultPlannerModel is used when no model is configured.
const DefaultPlannerModel = "gpt-4o-mini"

// ErrUnparseablePlan is returned when a completion does not hold a plan.
var ErrUnparseablePlan = errors.New("plan generator returned no usable plan")

// OpenAIPlanner asks a chat-completion endpoint for a plan in JSON and
// reshapes the reply.
type OpenAIPlanner struct {
	client openai.Client
	model  string
}

// NewOpenAIPlanner returns a planner for any OpenAI-compatible endpoint. An
// empty baseURL uses the public API.
func NewOpenAIPlanner(apiKey, baseURL, model string, opts ...option.RequestOption) *OpenAIPlanner {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(1)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)
	if model == "" {
		model = DefaultPlannerModel
	}
	return &OpenAIPlanner{client: openai.NewClient(reqOpts...), model: model}
}

const plannerSystemPrompt = `You are a career mentor who writes week-by-week interview preparation plans.
Reply with JSON only, shaped as:
{"title": string, "weeks": [{"week": number, "focus": string, "topics": [string], "resources": [string]}]}`

func (p *OpenAIPlanner) Generate(ctx context.Context, req PlanRequest) (*GeneratedPlan, error) {
	prompt := fmt.Sprintf("Create a %d-week preparation plan for the role %q. Current level: %s. Skills to cover: %s.",
		req.DurationWeeks, req.TargetRole, orDefault(req.CurrentLevel, "beginner"), orDefault(strings.Join(req.Skills, ", "), "choose the essentials"))

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(plannerSystemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrUnparseablePlan
	}
	return ParsePlan(resp.Choices[0].Message.Content, req.DurationWeeks)
}

// ParsePlan extracts a plan from a completion. Markdown code fences are
// stripped, weeks beyond maxWeeks are dropped and weeks are renumbered from 1.
func ParsePlan(content string, maxWeeks int) (*GeneratedPlan, error) {
	body := strings.TrimSpace(content)
	if start := strings.Index(body, "{"); start >= 0 {
		if end := strings.LastIndex(body, "}"); end > start {
			body = body[start : end+1]
		}
	}
	if !gjson.Valid(body) {
		return nil, ErrUnparseablePlan
	}

	doc := gjson.Parse(body)
	plan := &GeneratedPlan{Title: strings.TrimSpace(doc.Get("title").String())}
	doc.Get("weeks").ForEach(func(_, w gjson.Result) bool {
		if maxWeeks > 0 && len(plan.Weeks) >= maxWeeks {
			return false
		}
		week := models.PlanWeek{
			Week:      len(plan.Weeks) + 1,
			Focus:     strings.TrimSpace(w.Get("focus").String()),
			Topics:    stringList(w.Get("topics")),
			Resources: stringList(w.Get("resources")),
		}
		if week.Focus == "" && len(week.Topics) == 0 {
			return true
		}
		plan.Weeks = append(plan.Weeks, week)
		return true
	})
	if len(plan.Weeks) == 0 {
		return nil, ErrUnparseablePlan
	}
	return plan, nil
}

func stringList(r gjson.Result) []string {
	out := []string{}
	if r.IsArray() {
		for _, v := range r.Array() {
			if s := strings.TrimSpace(v.String()); s != "" {
				out = append(out, s)
			}
		}
	} else if s := strings.TrimSpace(r.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// SkeletonPlan builds a plan without any generator: skills are spread
// round-robin over the weeks and the last week is left for mock interviews.
func SkeletonPlan(req PlanRequest) *GeneratedPlan {
	skills := req.Skills
	if len(skills) == 0 {
		skills = []string{"Data structures", "Algorithms", "System design", "Behavioral questions"}
	}
	weeks := make([]models.PlanWeek, req.DurationWeeks)
	for i := range weeks {
		weeks[i] = models.PlanWeek{Week: i + 1, Topics: []string{}, Resources: []string{}}
	}
	study := len(weeks)
	if study > 1 {
		study--
	}
	for i, skill := range skills {
		w := &weeks[i%study]
		w.Topics = append(w.Topics, skill)
	}
	for i := 0; i < study; i++ {
		if len(weeks[i].Topics) == 0 {
			weeks[i].Topics = []string{"Revision and practice problems"}
		}
		weeks[i].Focus = weeks[i].Topics[0]
	}
	if study < len(weeks) {
		last := &weeks[len(weeks)-1]
		last.Focus = "Mock interviews"
		last.Topics = []string{"Mock interviews", "Review weak areas"}
	}
	return &GeneratedPlan{
		Title: fmt.Sprintf("%d-week plan for %s", req.DurationWeeks, req.TargetRole),
		Weeks: weeks,
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
