package tianapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/ports"
	"github.com/bnema/daily-fortune/internal/version"
)

const (
	DefaultBaseURL = "https://apis.tianapi.com"
	AlmanacPath    = "/lunar/index"
	StarPath       = "/star/index"

	DefaultRequestTimeout = 10 * time.Second

	successCode      = 200
	dateLayout       = "2006-01-02"
	maxResponseBytes = 1 << 20
)

var userAgent = "Mozilla/5.0 (compatible; daily-fortune/" + version.Version + ")"

// Client talks to the TianAPI almanac and horoscope endpoints. It never
// retries and never substitutes placeholder content; callers decide what to
// do with a failure.
type Client struct {
	BaseURL        string
	APIKey         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Random         domain.RandomSource
}

var (
	_ ports.AlmanacProvider       = (*Client)(nil)
	_ ports.ConstellationProvider = (*Client)(nil)
)

type envelope struct {
	Code   int             `json:"code"`
	Msg    string          `json:"msg"`
	Result json.RawMessage `json:"result"`
}

// lunarResult mirrors /lunar/index. Every field is optional.
type lunarResult struct {
	GregorianDate     string `json:"gregoriandate"`
	LunarDate         string `json:"lunardate"`
	LunarMonthName    string `json:"lmonthname"`
	LubarMonth        string `json:"lubarmonth"`
	LunarDay          string `json:"lunarday"`
	TiangandizhiYear  string `json:"tiangandizhiyear"`
	TiangandizhiMonth string `json:"tiangandizhimonth"`
	TiangandizhiDay   string `json:"tiangandizhiday"`
	Shengxiao         string `json:"shengxiao"`
	LunarFestival     string `json:"lunar_festival"`
	Festival          string `json:"festival"`
	Jieqi             string `json:"jieqi"`
	Fitness           string `json:"fitness"`
	Taboo             string `json:"taboo"`
	Shenwei           string `json:"shenwei"`
	Taishen           string `json:"taishen"`
	Chongsha          string `json:"chongsha"`
	Suisha            string `json:"suisha"`
	Pengzu            string `json:"pengzu"`
	Jianshen          string `json:"jianshen"`
	WuxingJiazi       string `json:"wuxingjiazi"`
	WuxingNaYear      string `json:"wuxingnayear"`
	WuxingNaMonth     string `json:"wuxingnamonth"`
	Xingsu            string `json:"xingsu"`
}

type starResult struct {
	List []starItem `json:"list"`
}

type starItem struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (c Client) FetchAlmanac(ctx context.Context, date time.Time) (domain.AlmanacRecord, error) {
	day := date.Format(dateLayout)

	var result lunarResult
	if err := c.get(ctx, AlmanacPath, url.Values{"date": {day}}, &result); err != nil {
		return domain.AlmanacRecord{}, fmt.Errorf("fetch almanac %s: %w", day, err)
	}

	return mapAlmanac(result, day), nil
}

func (c Client) FetchConstellation(ctx context.Context, sign domain.Sign, date time.Time) (domain.ConstellationRecord, error) {
	if !sign.Valid() {
		sign = domain.DefaultSign
	}

	var result starResult
	if err := c.get(ctx, StarPath, url.Values{"astro": {sign.String()}}, &result); err != nil {
		return domain.ConstellationRecord{}, fmt.Errorf("fetch constellation %s: %w", sign, err)
	}
	if len(result.List) == 0 {
		return domain.ConstellationRecord{}, fmt.Errorf("fetch constellation %s: %w", sign, &domain.UpstreamDataError{Code: successCode, Message: "result list is empty"})
	}

	return mapConstellation(result.List, sign, date.Format(dateLayout), c.random()), nil
}

func (c Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return domain.ErrMissingAPIKey
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	endpoint, err := buildAPIURL(baseURL, path)
	if err != nil {
		return err
	}

	query.Set("key", c.APIKey)

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create upstream request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &domain.TransportError{Err: redactKey(err, c.APIKey)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.UpstreamHTTPError{StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return &domain.UpstreamDataError{Message: fmt.Sprintf("decode envelope: %v", err)}
	}
	if env.Code != successCode {
		return &domain.UpstreamDataError{Code: env.Code, Message: env.Msg}
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return &domain.UpstreamDataError{Code: env.Code, Message: "result is missing"}
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &domain.UpstreamDataError{Code: env.Code, Message: fmt.Sprintf("decode result: %v", err)}
	}

	return nil
}

func mapAlmanac(r lunarResult, day string) domain.AlmanacRecord {
	gregorian := r.GregorianDate
	if gregorian == "" {
		gregorian = day
	}

	return domain.AlmanacRecord{
		DateInfo: domain.AlmanacDateInfo{
			GregorianDate:  gregorian,
			LunarDate:      r.LunarDate,
			LunarFormatted: domain.FormatLunar(r.LubarMonth, r.LunarDay, r.LunarDate),
			LunarMonthName: r.LunarMonthName,
			YearGanzhi:     r.TiangandizhiYear,
			MonthGanzhi:    r.TiangandizhiMonth,
			DayGanzhi:      r.TiangandizhiDay,
			Zodiac:         r.Shengxiao,
			LunarFestival:  r.LunarFestival,
			Festival:       r.Festival,
			Jieqi:          r.Jieqi,
		},
		FortuneInfo: domain.AlmanacFortuneInfo{
			Fitness:      r.Fitness,
			Taboo:        r.Taboo,
			FitnessItems: domain.SplitActivities(r.Fitness),
			TabooItems:   domain.SplitActivities(r.Taboo),
			Shenwei:      r.Shenwei,
			Taishen:      r.Taishen,
			Chongsha:     r.Chongsha,
			Suisha:       r.Suisha,
			Pengzu:       r.Pengzu,
			Jianshen:     r.Jianshen,
		},
		WuxingInfo: domain.AlmanacWuxingInfo{
			Jiazi:      r.WuxingJiazi,
			NayinYear:  r.WuxingNaYear,
			NayinMonth: r.WuxingNaMonth,
		},
		XingsuInfo: domain.AlmanacXingsuInfo{Xingsu: r.Xingsu},
	}
}

func mapConstellation(items []starItem, sign domain.Sign, day string, rng domain.RandomSource) domain.ConstellationRecord {
	content := func(types ...string) string {
		for _, typ := range types {
			for _, item := range items {
				if item.Type != "" && strings.Contains(item.Type, typ) && item.Content != "" {
					return item.Content
				}
			}
		}
		return ""
	}

	overall := content("今日概述", "综合")
	love := content("爱情指数")
	career := content("工作指数", "事业指数")
	wealth := content("财运指数")
	health := content("健康指数")

	return domain.ConstellationRecord{
		Sign:           sign,
		Name:           sign.ChineseName(),
		DateRange:      sign.DateRange(),
		Date:           day,
		OverallFortune: overall,
		LoveFortune:    love,
		CareerFortune:  career,
		WealthFortune:  wealth,
		HealthFortune:  health,
		LuckyNumber:    domain.ParseLuckyNumber(content("幸运数字"), rng),
		LuckyColor:     content("幸运颜色"),
		Indices: domain.ConstellationIndices{
			Comprehensive: domain.ExtractScore(content("综合指数", "今日概述"), rng),
			Love:          domain.ExtractScore(love, rng),
			Work:          domain.ExtractScore(career, rng),
			Money:         domain.ExtractScore(wealth, rng),
			Health:        domain.ExtractScore(health, rng),
		},
	}
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) random() domain.RandomSource {
	if c.Random != nil {
		return c.Random
	}
	return ports.SystemRandom{}
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

// redactKey strips the api key from *url.Error messages, which embed the
// full request URL.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if key == "" || !errors.As(err, &urlErr) {
		return err
	}

	return &url.Error{
		Op:  urlErr.Op,
		URL: strings.ReplaceAll(urlErr.URL, url.QueryEscape(key), "***"),
		Err: urlErr.Err,
	}
}

func buildAPIURL(baseURL string, path string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}
