package profiles

import (
	"encoding/json"
	"strconv"

	"falcon/internal/core/domain"
	"falcon/internal/platform/errors"
)

// Sites retorna los sitios soportados.
func Sites() []Site {
	return []Site{
		{
			Name:        "gitlab",
			Description: "GitLab.com user lookup",
			BaseURL:     "https://gitlab.com",
			Path:        "/api/v4/users?username=%s",
			ProfileURL:  "https://gitlab.com/%s",
			Extract:     extractGitLab,
		},
		{
			Name:        "hackernews",
			Description: "Hacker News user via the Firebase API",
			BaseURL:     "https://hacker-news.firebaseio.com",
			Path:        "/v0/user/%s.json",
			ProfileURL:  "https://news.ycombinator.com/user?id=%s",
			Extract:     extractHackerNews,
		},
		{
			Name:        "keybase",
			Description: "Keybase identity and linked proofs",
			BaseURL:     "https://keybase.io",
			Path:        "/_/api/1.0/user/lookup.json?usernames=%s",
			ProfileURL:  "https://keybase.io/%s",
			Extract:     extractKeybase,
		},
		{
			Name:        "devto",
			Description: "DEV Community profile",
			BaseURL:     "https://dev.to",
			Path:        "/api/users/by_username?url=%s",
			ProfileURL:  "https://dev.to/%s",
			Extract:     extractDevTo,
		},
		{
			Name:        "dockerhub",
			Description: "Docker Hub account",
			BaseURL:     "https://hub.docker.com",
			Path:        "/v2/users/%s/",
			ProfileURL:  "https://hub.docker.com/u/%s",
			Extract:     extractDockerHub,
		},
		{
			Name:        "medium",
			Description: "Medium profile page existence",
			BaseURL:     "https://medium.com",
			Path:        "/@%s",
			ProfileURL:  "https://medium.com/@%s",
			Headers:     map[string]string{"Accept": "text/html"},
		},
	}
}

func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrInvalidResponse, err.Error())
	}
	return nil
}

func extractGitLab(body []byte) (*domain.Fields, bool, error) {
	var users []struct {
		ID        int    `json:"id"`
		Username  string `json:"username"`
		Name      string `json:"name"`
		State     string `json:"state"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := decode(body, &users); err != nil {
		return nil, false, err
	}
	if len(users) == 0 {
		return nil, false, nil
	}
	u := users[0]
	return domain.NewFields().
		Set("id", strconv.Itoa(u.ID)).
		Set("username", u.Username).
		Set("name", u.Name).
		Set("state", u.State).
		Set("avatar_url", u.AvatarURL), true, nil
}

func extractHackerNews(body []byte) (*domain.Fields, bool, error) {
	var user *struct {
		ID        string `json:"id"`
		Created   int64  `json:"created"`
		Karma     int    `json:"karma"`
		About     string `json:"about"`
		Submitted []int  `json:"submitted"`
	}
	if err := decode(body, &user); err != nil {
		return nil, false, err
	}
	// la API devuelve null para usuarios inexistentes
	if user == nil {
		return nil, false, nil
	}
	return domain.NewFields().
		Set("id", user.ID).
		Set("karma", strconv.Itoa(user.Karma)).
		Set("created", strconv.FormatInt(user.Created, 10)).
		Set("submissions", strconv.Itoa(len(user.Submitted))).
		Set("about", user.About), true, nil
}

func extractKeybase(body []byte) (*domain.Fields, bool, error) {
	var resp struct {
		Them []*struct {
			ID     string `json:"id"`
			Basics struct {
				Username string `json:"username"`
			} `json:"basics"`
			Profile *struct {
				FullName string `json:"full_name"`
				Location string `json:"location"`
				Bio      string `json:"bio"`
			} `json:"profile"`
			ProofsSummary struct {
				All []struct {
					ProofType string `json:"proof_type"`
					Nametag   string `json:"nametag"`
				} `json:"all"`
			} `json:"proofs_summary"`
		} `json:"them"`
	}
	if err := decode(body, &resp); err != nil {
		return nil, false, err
	}
	if len(resp.Them) == 0 || resp.Them[0] == nil {
		return nil, false, nil
	}
	them := resp.Them[0]
	fields := domain.NewFields().
		Set("id", them.ID).
		Set("username", them.Basics.Username)
	if them.Profile != nil {
		fields.Set("full_name", them.Profile.FullName).
			Set("location", them.Profile.Location).
			Set("bio", them.Profile.Bio)
	}
	if len(them.ProofsSummary.All) > 0 {
		proofs := domain.NewFields()
		for _, proof := range them.ProofsSummary.All {
			proofs.Set(proof.ProofType, proof.Nametag)
		}
		fields.SetNested("proofs", proofs)
	}
	return fields, true, nil
}

func extractDevTo(body []byte) (*domain.Fields, bool, error) {
	var user struct {
		ID              int    `json:"id"`
		Username        string `json:"username"`
		Name            string `json:"name"`
		Summary         string `json:"summary"`
		TwitterUsername string `json:"twitter_username"`
		GithubUsername  string `json:"github_username"`
		WebsiteURL      string `json:"website_url"`
		Location        string `json:"location"`
		JoinedAt        string `json:"joined_at"`
	}
	if err := decode(body, &user); err != nil {
		return nil, false, err
	}
	if user.Username == "" {
		return nil, false, nil
	}
	return domain.NewFields().
		Set("id", strconv.Itoa(user.ID)).
		Set("username", user.Username).
		Set("name", user.Name).
		Set("summary", user.Summary).
		Set("twitter_username", user.TwitterUsername).
		Set("github_username", user.GithubUsername).
		Set("website", user.WebsiteURL).
		Set("location", user.Location).
		Set("joined_at", user.JoinedAt), true, nil
}

func extractDockerHub(body []byte) (*domain.Fields, bool, error) {
	var user struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		FullName   string `json:"full_name"`
		Location   string `json:"location"`
		Company    string `json:"company"`
		ProfileURL string `json:"profile_url"`
		DateJoined string `json:"date_joined"`
		Type       string `json:"type"`
	}
	if err := decode(body, &user); err != nil {
		return nil, false, err
	}
	if user.Username == "" {
		return nil, false, nil
	}
	return domain.NewFields().
		Set("id", user.ID).
		Set("username", user.Username).
		Set("full_name", user.FullName).
		Set("location", user.Location).
		Set("company", user.Company).
		Set("website", user.ProfileURL).
		Set("type", user.Type).
		Set("date_joined", user.DateJoined), true, nil
}
