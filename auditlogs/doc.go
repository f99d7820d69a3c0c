// Package auditlogs is a client for the Slack Audit Logs API.
//
// Every call returns a *Response envelope with the status code, headers, raw
// body and the decoded JSON object:
//
//	client, err := auditlogs.New(token)
//	if err != nil {
//		return err
//	}
//	resp, err := client.Logs(ctx, auditlogs.LogsFilter{
//		Action: auditlogs.Ptr("user_login"),
//		Limit:  auditlogs.Ptr(100),
//	})
//
// Non-2xx responses are not errors; callers inspect Response.StatusCode.
// A non-empty body that is not valid JSON yields an *APIError of type
// ErrorTypeResponseParse. Transport failures are returned unchanged.
package auditlogs
