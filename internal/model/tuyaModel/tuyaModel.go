package tuyaModel

import "encoding/json"

type Response struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Result  json.RawMessage `json:"result"`
	T       int64           `json:"t"`
}

type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpireTime   int64  `json:"expire_time"`
	UID          string `json:"uid"`
}

type Commands struct {
	Commands []Command `json:"commands"`
}

type Command struct {
	Code  string `json:"code"`
	Value any    `json:"value"`
}

type ColourData struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}
