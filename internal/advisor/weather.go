package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kalambet/checkmate/internal/chat"
	"github.com/kalambet/checkmate/internal/openai"
)

const (
	defaultForecastURL     = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0/getVilageFcst"
	defaultForecastTimeout = 10 * time.Second
)

// Forecast is the morning snapshot of the village forecast categories the
// advisor cares about.
type Forecast struct {
	Temperature string // TMP, degrees Celsius
	Sky         string // SKY code: 1 clear, 3 mostly cloudy, 4 overcast
	Precip      string // PTY code: 0 none, 1 rain, 2 rain/snow, 3 snow, 4 shower
	RainChance  string // POP, percent
}

// Summary renders the forecast as a short human-readable line.
func (f Forecast) Summary() string {
	var parts []string
	if f.Temperature != "" {
		parts = append(parts, f.Temperature+"°C")
	}
	switch f.Sky {
	case "1":
		parts = append(parts, "clear")
	case "3":
		parts = append(parts, "mostly cloudy")
	case "4":
		parts = append(parts, "overcast")
	}
	switch f.Precip {
	case "1":
		parts = append(parts, "rain")
	case "2":
		parts = append(parts, "rain or snow")
	case "3":
		parts = append(parts, "snow")
	case "4":
		parts = append(parts, "showers")
	}
	if f.RainChance != "" {
		parts = append(parts, f.RainChance+"% chance of rain")
	}
	if len(parts) == 0 {
		return "no forecast data"
	}
	return strings.Join(parts, ", ")
}

// ForecastClient queries the KMA short-term village forecast API.
type ForecastClient struct {
	serviceKey  string
	forecastURL string
	httpClient  *http.Client
}

// NewForecastClient creates a forecast client with the given API key.
func NewForecastClient(serviceKey string) *ForecastClient {
	return &ForecastClient{
		serviceKey:  serviceKey,
		forecastURL: defaultForecastURL,
		httpClient:  &http.Client{Timeout: defaultForecastTimeout},
	}
}

// NewForecastClientWithURL creates a client pointing at a custom endpoint (for testing).
func NewForecastClientWithURL(serviceKey, forecastURL string) *ForecastClient {
	c := NewForecastClient(serviceKey)
	c.forecastURL = forecastURL
	return c
}

type forecastResponse struct {
	Response struct {
		Body struct {
			Items struct {
				Item []struct {
					Category  string `json:"category"`
					FcstTime  string `json:"fcstTime"`
					FcstValue string `json:"fcstValue"`
				} `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// Forecast fetches today's forecast for the given grid cell. It keeps the
// earliest reported value per category, which for the 0500 base time is the
// morning outlook.
func (c *ForecastClient) Forecast(ctx context.Context, nx, ny int) (Forecast, error) {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("pageNo", "1")
	params.Set("numOfRows", "1000")
	params.Set("dataType", "JSON")
	params.Set("base_date", time.Now().Format("20060102"))
	params.Set("base_time", "0500")
	params.Set("nx", fmt.Sprintf("%d", nx))
	params.Set("ny", fmt.Sprintf("%d", ny))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.forecastURL+"?"+params.Encode(), nil)
	if err != nil {
		return Forecast{}, fmt.Errorf("creating forecast request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Forecast{}, fmt.Errorf("forecast: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Forecast{}, fmt.Errorf("decoding forecast response: %w", err)
	}

	var f Forecast
	seen := map[string]string{}
	for _, item := range result.Response.Body.Items.Item {
		if at, ok := seen[item.Category]; ok && at <= item.FcstTime {
			continue
		}
		seen[item.Category] = item.FcstTime
		switch item.Category {
		case "TMP":
			f.Temperature = item.FcstValue
		case "SKY":
			f.Sky = item.FcstValue
		case "PTY":
			f.Precip = item.FcstValue
		case "POP":
			f.RainChance = item.FcstValue
		}
	}
	return f, nil
}

// WeatherAdvice is a forecast summary paired with a short suggestion.
type WeatherAdvice struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Advice  string `json:"advice"`
}

const weatherFallbackTitle = "Today's weather"

const weatherSystemPrompt = `Given a one-line weather summary, write one short friendly sentence of practical advice (umbrella, warm clothes, sunscreen) and a short event title for it.
Respond with ONLY a JSON object: {"title": "...", "advice": "..."}`

// WeatherAdvisor turns the raw forecast into a titled piece of advice.
type WeatherAdvisor struct {
	llm      chat.Chatter
	model    string
	forecast *ForecastClient
}

// NewWeatherAdvisor wires the forecast client to the advice model.
func NewWeatherAdvisor(llm chat.Chatter, model string, forecast *ForecastClient) *WeatherAdvisor {
	return &WeatherAdvisor{llm: llm, model: model, forecast: forecast}
}

// Advise fetches the forecast and asks the model for advice. A failed or
// unparseable advice call degrades to the plain summary under a fixed title;
// only the forecast fetch itself can fail.
func (a *WeatherAdvisor) Advise(ctx context.Context, nx, ny int) (WeatherAdvice, error) {
	f, err := a.forecast.Forecast(ctx, nx, ny)
	if err != nil {
		return WeatherAdvice{}, err
	}
	summary := f.Summary()

	messages := []openai.Message{
		{Role: "system", Content: weatherSystemPrompt},
		{Role: "user", Content: summary},
	}
	answer, _, err := a.llm.Chat(ctx, a.model, messages, conversationTemperature)
	if err != nil {
		slog.Warn("weather advice generation failed", "error", err)
		return WeatherAdvice{Title: weatherFallbackTitle, Summary: summary, Advice: summary}, nil
	}

	var advice WeatherAdvice
	if err := json.Unmarshal([]byte(chat.StripCodeFence(answer)), &advice); err != nil {
		slog.Warn("weather advice returned unparseable JSON", "error", err, "response", answer)
		return WeatherAdvice{Title: weatherFallbackTitle, Summary: summary, Advice: summary}, nil
	}
	if advice.Title == "" {
		advice.Title = weatherFallbackTitle
	}
	advice.Summary = summary
	return advice, nil
}
