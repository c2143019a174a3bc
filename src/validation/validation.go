package validation

import (
	"html"
	"math"
	"net/mail"
	"strconv"
	"strings"

	"github.com/halalbiye/halalbiye-server/src/apperror"
	"github.com/halalbiye/halalbiye-server/src/models"
	"github.com/microcosm-cc/bluemonday"
)

// Errors collects field failures in the order they were found.
type Errors []apperror.Source

func (e *Errors) Add(path, message string) {
	*e = append(*e, apperror.Source{Path: path, Message: message})
}

func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Err returns the validation error for e, or nil when empty.
func (e Errors) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return apperror.Validation(e)
}

var strict = bluemonday.StrictPolicy()

const (
	maxAge            = 150
	maxSanitizePasses = 8
)

// Sanitize strips every tag from s and trims surrounding space. Entities are
// decoded and the result stripped again until it no longer changes, so
// encoded markup cannot come back out as tags.
func Sanitize(s string) string {
	out := strings.TrimSpace(s)
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(out)))
		if next == out {
			return out
		}
		out = next
	}
	return strings.TrimSpace(strict.Sanitize(out))
}

type RegisterInput struct {
	Email    string
	Password string
	Profile  models.Profile
}

type LoginInput struct {
	Email    string
	Password string
}

type SendRequestInput struct {
	ToUser string
}

type RespondInput struct {
	ID string
}

// Register validates a registration body.
func Register(body map[string]any) (RegisterInput, Errors) {
	var errs Errors
	in := RegisterInput{
		Email:    email(body, &errs),
		Password: password(body, &errs),
		Profile:  profile(body, &errs),
	}
	return in, errs
}

// Login validates a login body.
func Login(body map[string]any) (LoginInput, Errors) {
	var errs Errors
	in := LoginInput{
		Email:    email(body, &errs),
		Password: password(body, &errs),
	}
	return in, errs
}

// UpdateProfile validates a partial profile. Keys outside the profile
// attributes are ignored.
func UpdateProfile(body map[string]any) (models.Profile, Errors) {
	var errs Errors
	p := profile(body, &errs)
	return p, errs
}

func SendRequest(body map[string]any) (SendRequestInput, Errors) {
	var errs Errors
	id := requiredString(body, "toUser", "Target user is required", &errs)
	return SendRequestInput{ToUser: id}, errs
}

func Respond(body map[string]any) (RespondInput, Errors) {
	var errs Errors
	id := requiredString(body, "id", "Request ID is required", &errs)
	return RespondInput{ID: id}, errs
}

func email(body map[string]any, errs *Errors) string {
	raw, ok := body["email"]
	if !ok || raw == nil {
		errs.Add("email", "Email is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		errs.Add("email", "Email must be a string")
		return ""
	}
	s = strings.TrimSpace(s)
	if addr, err := mail.ParseAddress(s); err != nil || addr.Address != s {
		errs.Add("email", "Invalid email format")
	}
	return s
}

func password(body map[string]any, errs *Errors) string {
	raw, ok := body["password"]
	if !ok || raw == nil {
		errs.Add("password", "Password is required")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		errs.Add("password", "Password must be a string")
		return ""
	}
	switch n := len([]rune(s)); {
	case n < 8:
		errs.Add("password", "Password must be at least 8 characters")
	case n > 20:
		errs.Add("password", "Password can not be more than 20 characters")
	}
	return s
}

func requiredString(body map[string]any, key, message string, errs *Errors) string {
	s, ok := body[key].(string)
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		errs.Add(key, message)
		return ""
	}
	return s
}

type textField struct {
	key   string
	label string
	max   int
}

func profile(body map[string]any, errs *Errors) models.Profile {
	var p models.Profile

	p.Name = text(body, textField{"name", "Name", 50}, errs)
	p.Age = age(body, errs)
	p.Gender = gender(body, errs)
	p.Religion = text(body, textField{"religion", "Religion", 30}, errs)
	p.Location = text(body, textField{"location", "Location", 100}, errs)
	p.Height = height(body, errs)
	p.Education = text(body, textField{"education", "Education", 50}, errs)
	p.Occupation = text(body, textField{"occupation", "Occupation", 50}, errs)

	return p
}

func text(body map[string]any, f textField, errs *Errors) *string {
	raw, ok := body[f.key]
	if !ok || raw == nil {
		return nil
	}
	s, ok := raw.(string)
	if !ok {
		errs.Add(f.key, f.label+" must be a string")
		return nil
	}
	s = Sanitize(s)
	if len([]rune(s)) > f.max {
		errs.Add(f.key, f.label+" can not be more than "+strconv.Itoa(f.max)+" characters")
		return nil
	}
	return &s
}

func age(body map[string]any, errs *Errors) *int {
	raw, ok := body["age"]
	if !ok || raw == nil {
		return nil
	}
	n, ok := raw.(float64)
	if !ok {
		errs.Add("age", "Age must be a number")
		return nil
	}
	if n != math.Trunc(n) || math.IsInf(n, 0) {
		errs.Add("age", "Age must be an integer")
		return nil
	}
	if n < 0 {
		errs.Add("age", "Age must be positive")
		return nil
	}
	if n > maxAge {
		errs.Add("age", "Age can not be more than "+strconv.Itoa(maxAge))
		return nil
	}
	v := int(n)
	return &v
}

func height(body map[string]any, errs *Errors) *float64 {
	raw, ok := body["height"]
	if !ok || raw == nil {
		return nil
	}
	n, ok := raw.(float64)
	if !ok {
		errs.Add("height", "Height must be a number")
		return nil
	}
	if n <= 0 {
		errs.Add("height", "Height must be positive")
		return nil
	}
	return &n
}

func gender(body map[string]any, errs *Errors) *models.Gender {
	raw, ok := body["gender"]
	if !ok || raw == nil {
		return nil
	}
	s, _ := raw.(string)
	g := models.Gender(s)
	if !g.Valid() {
		errs.Add("gender", "Gender must be one of Male, Female, Other")
		return nil
	}
	return &g
}
