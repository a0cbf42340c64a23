// Package httpclient is a small HTTP client for the upstream services the bot
// talks to over plain HTTP: the self-hosted whisper sidecar and the chat
// platform's file download endpoint.
//
// Non-2xx responses come back as *Error, classified by status so callers can
// decide on retry; ToAppError maps them onto the application error codes.
//
//	client, _ := httpclient.New(httpclient.Config{BaseURL: "http://whisper:8387"})
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/transcribe",
//	    Body:   &httpclient.MultipartBody{Files: []httpclient.FileField{...}},
//	})
package httpclient
