package protocol

import "github.com/ashokCh-dev/Academia-Portal/internal/portal"

// RenderResult turns a successful outcome into its prefixed wire form.
func RenderResult(res portal.Result) string {
	switch {
	case res.Degraded:
		return "WARNING:" + res.Message
	case res.Info:
		return "INFO:" + res.Message
	default:
		return "SUCCESS:" + res.Message
	}
}

// RenderError turns a domain error into its prefixed wire form. Inconsistency
// outcomes render as WARNING; storage failures carry the underlying reason.
func RenderError(err error) string {
	if portal.CodeOf(err) == portal.ErrInconsistency {
		return "WARNING:" + portal.MessageOf(err)
	}
	if portal.CodeOf(err) == portal.ErrStorageIO {
		return "ERROR:" + err.Error()
	}
	return "ERROR:" + portal.MessageOf(err)
}

func render(res portal.Result, err error) string {
	if err != nil {
		return RenderError(err)
	}
	return RenderResult(res)
}
