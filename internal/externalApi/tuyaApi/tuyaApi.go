package tuyaApi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/portfolio_mood_light/config"
	"github.com/KotFed0t/portfolio_mood_light/internal/externalApi"
	"github.com/KotFed0t/portfolio_mood_light/internal/model"
	"github.com/KotFed0t/portfolio_mood_light/internal/model/tuyaModel"
	"github.com/KotFed0t/portfolio_mood_light/utils"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const (
	tokenPath    = "/v1.0/token?grant_type=1"
	commandsPath = "/v1.0/iot-03/devices/%s/commands"

	codeTokenInvalid = 1010
	// refresh a bit before the cloud expires the token
	tokenExpirySlack = time.Minute
	maxBrightness    = 1000
)

var ErrRejected = errors.New("tuya request rejected")

// TuyaApi drives one bulb through the Tuya Cloud OpenAPI.
type TuyaApi struct {
	client       *resty.Client
	clientID     string
	clientSecret string
	deviceID     string
	now          func() time.Time

	// mu guards the token; Shutdown can turn the bulb off while a cycle is still sending.
	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(cfg *config.Config) *TuyaApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.TuyaApi.Url)

	return &TuyaApi{
		client:       client,
		clientID:     cfg.API.TuyaApi.ClientID,
		clientSecret: cfg.API.TuyaApi.ClientSecret,
		deviceID:     cfg.API.TuyaApi.DeviceID,
		now:          time.Now,
	}
}

func (a *TuyaApi) SetColour(ctx context.Context, rgb model.RGB) error {
	h, s, v := rgbToHSV(rgb)
	return a.sendCommands(ctx, "TuyaApi.SetColour",
		tuyaModel.Command{Code: "switch_led", Value: true},
		tuyaModel.Command{Code: "work_mode", Value: "colour"},
		tuyaModel.Command{Code: "colour_data_v2", Value: tuyaModel.ColourData{H: h, S: s, V: v}},
	)
}

func (a *TuyaApi) SetWhite(ctx context.Context) error {
	return a.sendCommands(ctx, "TuyaApi.SetWhite",
		tuyaModel.Command{Code: "switch_led", Value: true},
		tuyaModel.Command{Code: "work_mode", Value: "white"},
		tuyaModel.Command{Code: "bright_value_v2", Value: maxBrightness},
	)
}

func (a *TuyaApi) TurnOff(ctx context.Context) error {
	return a.sendCommands(ctx, "TuyaApi.TurnOff", tuyaModel.Command{Code: "switch_led", Value: false})
}

func (a *TuyaApi) sendCommands(ctx context.Context, op string, commands ...tuyaModel.Command) error {
	cycleID := utils.GetCycleIDFromCtx(ctx)

	slog.Debug("start "+op, slog.String("cycleID", cycleID), slog.String("op", op), slog.Any("commands", commands))

	path := fmt.Sprintf(commandsPath, a.deviceID)
	body := tuyaModel.Commands{Commands: commands}

	_, err := a.authorized(ctx, http.MethodPost, path, body)
	if err != nil {
		slog.Error(op+" failed", slog.String("cycleID", cycleID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug(op+" complete", slog.String("cycleID", cycleID), slog.String("op", op))

	return nil
}

// authorized runs a business request, fetching a token first and once more if the cloud rejects it.
func (a *TuyaApi) authorized(ctx context.Context, method, path string, body any) (tuyaModel.Response, error) {
	for attempt := 0; ; attempt++ {
		token, err := a.token(ctx)
		if err != nil {
			return tuyaModel.Response{}, err
		}

		resp, err := a.do(ctx, method, path, body, token)
		if err != nil {
			return tuyaModel.Response{}, err
		}

		if !resp.Success && resp.Code == codeTokenInvalid && attempt == 0 {
			slog.Warn("tuya access token rejected, fetching a new one", slog.String("cycleID", utils.GetCycleIDFromCtx(ctx)))
			a.dropToken(token)
			continue
		}

		if !resp.Success {
			return resp, fmt.Errorf("%w: code %d: %s", ErrRejected, resp.Code, resp.Msg)
		}

		return resp, nil
	}
}

func (a *TuyaApi) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && a.now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	resp, err := a.do(ctx, http.MethodGet, tokenPath, nil, "")
	if err != nil {
		return "", err
	}

	if !resp.Success {
		return "", fmt.Errorf("%w: token: code %d: %s", ErrRejected, resp.Code, resp.Msg)
	}

	token := tuyaModel.Token{}
	if err = json.Unmarshal(resp.Result, &token); err != nil {
		return "", fmt.Errorf("can't unmarshall token: %w", err)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrRejected)
	}

	a.accessToken = token.AccessToken
	a.tokenExpiry = a.now().Add(time.Duration(token.ExpireTime)*time.Second - tokenExpirySlack)

	return a.accessToken, nil
}

// dropToken forgets rejected unless another request already replaced it.
func (a *TuyaApi) dropToken(rejected string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken == rejected {
		a.accessToken = ""
	}
}

func (a *TuyaApi) do(ctx context.Context, method, path string, body any, accessToken string) (tuyaModel.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return tuyaModel.Response{}, err
		}
	}

	t := strconv.FormatInt(a.now().UnixMilli(), 10)
	nonce := uuid.NewString()

	req := a.client.R().
		SetContext(ctx).
		SetHeaders(map[string]string{
			"client_id":   a.clientID,
			"t":           t,
			"nonce":       nonce,
			"sign_method": "HMAC-SHA256",
			"sign":        sign(a.clientID, a.clientSecret, accessToken, t, nonce, method, path, payload),
		})

	if accessToken != "" {
		req.SetHeader("access_token", accessToken)
	}

	if payload != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(payload)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return tuyaModel.Response{}, fmt.Errorf("%w: %w", externalApi.ErrUnavailable, err)
	}

	if resp.IsError() {
		return tuyaModel.Response{}, fmt.Errorf("%w: status %d", externalApi.ErrUnavailable, resp.StatusCode())
	}

	res := tuyaModel.Response{}
	if err = json.Unmarshal(resp.Body(), &res); err != nil {
		return tuyaModel.Response{}, fmt.Errorf("can't unmarshall tuya response: %w", err)
	}

	return res, nil
}

// sign implements the Tuya OpenAPI request signature. accessToken is empty for token requests.
func sign(clientID, secret, accessToken, t, nonce, method, path string, body []byte) string {
	bodyHash := sha256.Sum256(body)
	stringToSign := strings.Join([]string{method, hex.EncodeToString(bodyHash[:]), "", path}, "\n")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(clientID + accessToken + t + nonce + stringToSign))

	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// rgbToHSV converts to Tuya's colour_data_v2 ranges: h 0-360, s and v 0-1000.
func rgbToHSV(rgb model.RGB) (h, s, v int) {
	r := float64(rgb.R) / 255
	g := float64(rgb.G) / 255
	b := float64(rgb.B) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	var hue float64
	switch {
	case delta == 0:
		hue = 0
	case maxC == r:
		hue = 60 * math.Mod((g-b)/delta, 6)
	case maxC == g:
		hue = 60 * ((b-r)/delta + 2)
	default:
		hue = 60 * ((r-g)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}

	var sat float64
	if maxC > 0 {
		sat = delta / maxC
	}

	return int(math.Round(hue)), int(math.Round(sat * 1000)), int(math.Round(maxC * 1000))
}
