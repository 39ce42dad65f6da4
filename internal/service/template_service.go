package service

import (
	"strings"

	"github.com/pulsekit/smsdash/internal/model"
)

// RenderTemplate substitutes {placeholder} variables in a message body.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// CustomerVars builds the placeholder map for one recipient.
func CustomerVars(c *model.Customer) map[string]string {
	return map[string]string{
		"first_name": c.FirstName,
		"last_name":  c.LastName,
		"phone":      c.Phone,
		"email":      c.Email,
		"company":    c.Company,
	}
}
