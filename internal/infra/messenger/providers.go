package messenger

import "strings"

// Supported provider dialects for the outbound message endpoint.
const (
	ProviderGeneric       = "generic"
	ProviderEvolution     = "evolution"
	ProviderWhatsAppCloud = "whatsapp_cloud"
)

// buildPayload shapes the request body for the configured provider.
func buildPayload(provider, phone, text string) map[string]any {
	switch provider {
	case ProviderEvolution:
		return map[string]any{
			"number": phone,
			"textMessage": map[string]any{
				"text": text,
			},
		}
	case ProviderWhatsAppCloud:
		return map[string]any{
			"messaging_product": "whatsapp",
			"to":                phone,
			"type":              "text",
			"text": map[string]any{
				"body": text,
			},
		}
	default:
		return map[string]any{
			"to":   phone,
			"text": text,
		}
	}
}

// buildHeaders shapes the auth headers for the configured provider.
// Evolution accepts either an apikey header or a Bearer token.
func buildHeaders(provider, auth string) map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	if auth == "" {
		return headers
	}
	switch provider {
	case ProviderEvolution:
		if strings.HasPrefix(auth, "Bearer ") {
			headers["Authorization"] = auth
		} else {
			headers["apikey"] = auth
		}
	default:
		headers["Authorization"] = auth
	}
	return headers
}
