package models

// UserProfile represents an identified chat user stored as a Redis hash.
type UserProfile struct {
	Username string `json:"name"`
	Age      string `json:"age"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
}

// Fields returns the hash fields written for the profile.
func (p UserProfile) Fields() map[string]string {
	return map[string]string{
		"name":     p.Username,
		"age":      p.Age,
		"gender":   p.Gender,
		"location": p.Location,
	}
}

// ProfileFromFields builds a profile from a stored hash. The second return
// value is false when any field is missing.
func ProfileFromFields(fields map[string]string) (UserProfile, bool) {
	p := UserProfile{
		Username: fields["name"],
		Age:      fields["age"],
		Gender:   fields["gender"],
		Location: fields["location"],
	}
	for _, key := range []string{"name", "age", "gender", "location"} {
		if _, ok := fields[key]; !ok {
			return p, false
		}
	}
	return p, true
}
