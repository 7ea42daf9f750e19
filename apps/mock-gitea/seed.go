package main

import (
	"fmt"

	"github.com/vellumcms/vellum/pkg/giteatest"
)

type demoPost struct {
	title string
	date  string
	draft bool
	body  string
}

var demoPosts = map[string]demoPost{
	"welcome": {
		title: "Welcome to Vellum",
		date:  "2026-07-03",
		body: "Vellum stores every entry as a markdown file in this repository.\n" +
			"Edit something in the CMS and watch the commit land here.",
	},
	"writing-offline": {
		title: "Writing Offline",
		date:  "2026-07-10",
		body: "Because content lives in git, you can clone the repository and\n" +
			"write with any editor. Vellum picks the changes up on the next read.",
	},
	"shortcodes": {
		title: "Using Shortcodes",
		date:  "2026-07-21",
		draft: true,
		body:  "Draft entries stay in the repository until the front end publishes them.",
	},
}

// seedContent populates the repository with a small demo site before the
// server accepts requests.
func seedContent(s *giteatest.Server) {
	files := map[string]string{
		"config.yml":     siteConfig(),
		"pages/about.md": aboutPage(),
	}
	for slug, p := range demoPosts {
		files["posts/"+slug+".md"] = postMarkdown(p)
	}
	s.Seed(files)
}

func postMarkdown(p demoPost) string {
	return fmt.Sprintf(`---
title: %q
date: %s
draft: %t
---

%s
`, p.title, p.date, p.draft, p.body)
}

func aboutPage() string {
	return `---
title: "About"
---

This site is served from a git repository. The mock host keeps it in
memory; restart to reset.
`
}

func siteConfig() string {
	return `title: Vellum Demo Site
baseURL: http://localhost:1313/
language: en
params:
  description: A demo content repository for vellum.
`
}
