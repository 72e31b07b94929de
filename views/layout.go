package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/pubtheme/content"
)

// VisibleNavItems is the number of navigation entries shown before the
// "More" menu.
const VisibleNavItems = 3

// Layout wraps body in the full page chrome.
func Layout(site Site, meta PageMeta, body templ.Component) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<!DOCTYPE html><html lang="en"`)
		if site.Dark {
			hw.attr("class", "dark")
		}
		hw.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		title := meta.Title
		if title == "" {
			title = site.Name
		}
		hw.raw("<title>")
		hw.text(title)
		hw.raw("</title>")
		desc := meta.Description
		if desc == "" {
			desc = site.Description
		}
		if desc != "" {
			hw.raw(`<meta name="description"`)
			hw.attr("content", desc)
			hw.raw(">")
		}
		canonical := meta.URL
		if canonical == "" {
			canonical = buildURL(site.URL)
		}
		hw.raw(`<link rel="canonical"`)
		hw.attr("href", canonical)
		hw.raw(">")
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		for _, m := range [][2]string{
			{"og:title", title},
			{"og:description", desc},
			{"og:url", canonical},
			{"og:type", ogType},
			{"og:site_name", site.Name},
			{"og:image", meta.Image},
		} {
			if m[1] == "" {
				continue
			}
			hw.raw(`<meta`)
			hw.attr("property", m[0])
			hw.attr("content", m[1])
			hw.raw(">")
		}
		if meta.Image != "" {
			hw.raw(`<meta name="twitter:card" content="summary_large_image">`)
		}
		jsonLD := meta.JSONLD
		if jsonLD == "" {
			jsonLD = WebsiteJsonLD(site)
		}
		hw.raw(`<script type="application/ld+json">`)
		hw.raw(jsonLD)
		hw.raw(`</script>`)
		hw.raw(`<link rel="alternate" type="application/rss+xml"`)
		hw.attr("title", site.Name)
		hw.raw(` href="/rss.xml">`)
		hw.raw(`<link rel="stylesheet" href="/public/styles.css"><script src="/public/htmx.min.js" defer></script>`)
		hw.raw(`</head><body class="min-h-screen bg-white text-slate-900 dark:bg-neutral-950 dark:text-neutral-50">`)
		if site.CSRFToken != "" {
			hw.raw(`<meta name="csrf-token"`)
			hw.attr("content", site.CSRFToken)
			hw.raw(">")
		}
		hw.render(Header(site))
		hw.raw("<main>")
		hw.render(body)
		hw.raw("</main>")
		hw.render(Footer(site))
		hw.raw("</body></html>")
	})
}

// Header renders the logo, the navigation with sub-menus and overflow, the
// call to action and the theme toggle.
func Header(site Site) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<header class="border-b bg-white py-10 dark:border-neutral-800 dark:bg-neutral-900"><div class="container mx-auto grid grid-cols-4 gap-5 px-5">`)
		hw.raw(`<div class="col-span-2 flex flex-1 flex-row items-center gap-2 lg:col-span-1">`)
		hw.render(Sidebar(site))
		hw.raw(`<div class="hidden lg:block">`)
		hw.render(Logo(site))
		hw.raw(`</div></div>`)
		hw.raw(`<div class="col-span-2 flex flex-row items-center justify-end gap-5 lg:col-span-3"><nav class="hidden lg:block">`)
		hw.render(NavList(site))
		hw.raw(`</nav>`)
		if site.CTA.Label != "" {
			hw.render(SmartLink(site.Links, site.CTA.URL,
				"rounded-full bg-blue-600 px-5 py-2 text-sm font-semibold text-white hover:bg-blue-700",
				Text(site.CTA.Label)))
		}
		hw.render(ThemeToggle(site))
		hw.raw(`</div></div><div class="mt-5 flex justify-center lg:hidden">`)
		hw.render(Logo(site))
		hw.raw(`</div></header>`)
	})
}

// Logo links home with the publication logo or its name.
func Logo(site Site) templ.Component {
	return component(func(hw *htmlWriter) {
		var body templ.Component
		if site.Logo != "" {
			body = component(func(hw *htmlWriter) {
				hw.raw(`<img class="block w-32 shrink-0 md:w-40"`)
				hw.attr("alt", site.Name)
				hw.attr("src", site.Logo)
				hw.raw(`><span class="text-2xl font-semibold md:text-3xl">Blog</span>`)
			})
		} else {
			body = component(func(hw *htmlWriter) {
				hw.raw(`<span class="block text-2xl font-semibold md:text-4xl">`)
				hw.text(site.Name)
				hw.raw(`</span>`)
			})
		}
		hw.raw(`<div class="flex flex-col items-start"><h1 class="relative w-full">`)
		hw.render(SmartLink(site.Links, "/", "flex flex-row items-center justify-start gap-3", body))
		hw.raw(`</h1>`)
		if site.Description != "" {
			hw.raw(`<p class="mt-2 max-w-md text-left text-base text-neutral-600 dark:text-neutral-300">`)
			hw.text(site.Description)
			hw.raw(`</p>`)
		}
		hw.raw(`</div>`)
	})
}

// NavList renders the desktop navigation: the first VisibleNavItems
// entries, groups as hover dropdowns, the rest under "More".
func NavList(site Site) templ.Component {
	return component(func(hw *htmlWriter) {
		visible, more := content.SplitNavigation(site.Nav, VisibleNavItems)
		hw.raw(`<ul class="flex flex-row items-center gap-6">`)
		for _, item := range visible {
			switch it := item.(type) {
			case content.NavGroup:
				hw.raw(`<li class="group relative">`)
				hw.render(SmartLink(site.Links, it.URL, navItemClass, Text(it.Label)))
				hw.raw(`<div class="invisible absolute left-0 top-full z-50 mt-2 w-72 rounded-lg border border-gray-100 bg-white opacity-0 shadow-xl transition-all group-hover:visible group-hover:opacity-100 dark:border-neutral-700 dark:bg-neutral-900"><div class="py-3">`)
				for _, child := range it.Children() {
					hw.render(SmartLink(site.Links, child.URL,
						"block px-6 py-3 text-sm font-medium text-neutral-600 hover:bg-slate-50 dark:text-neutral-300 dark:hover:bg-neutral-800",
						Text(child.Label)))
				}
				hw.raw(`</div></div></li>`)
			default:
				hw.raw(`<li class="group">`)
				hw.render(SmartLink(site.Links, it.Href(), navItemClass, Text(it.Title())))
				hw.raw(`</li>`)
			}
		}
		if len(more) > 0 {
			hw.raw(`<li><details class="relative"><summary class="block cursor-pointer rounded-full p-2 hover:bg-white dark:hover:bg-neutral-800">More</summary>`)
			hw.raw(`<div class="absolute right-0 z-50 mt-1 w-48 rounded border border-gray-300 bg-white shadow-md dark:border-neutral-800 dark:bg-neutral-900">`)
			for _, item := range more {
				hw.render(SmartLink(site.Links, item.Href(),
					"block truncate p-2 hover:bg-slate-100 dark:hover:bg-neutral-800", Text(item.Title())))
			}
			hw.raw(`</div></details></li>`)
		}
		hw.raw(`</ul>`)
	})
}

const navItemClass = "px-4 py-3 text-sm font-medium uppercase tracking-wide hover:underline"

// Sidebar is the mobile menu. Groups expand in place.
func Sidebar(site Site) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<details class="lg:hidden"><summary class="cursor-pointer rounded-xl px-3 py-2" aria-label="Open blog menu">`)
		hw.raw(`<svg class="h-5 w-5 stroke-current" viewBox="0 0 20 20" fill="none"><path d="M2.5 5h15M2.5 10h15M2.5 15h15" stroke-width="1.5" stroke-linecap="round"/></svg></summary>`)
		hw.raw(`<div class="fixed bottom-0 left-0 top-0 z-50 flex w-80 flex-col overflow-y-auto bg-white px-8 py-10 shadow-2xl dark:bg-neutral-950">`)
		hw.raw(`<h2 class="mb-4 text-sm font-semibold uppercase text-slate-500 dark:text-slate-400">Blog menu</h2><ul class="mb-10 flex flex-col gap-2">`)
		hw.raw(`<li>`)
		hw.render(SmartLink(site.Links, "/", sidebarItemClass, Text("Home")))
		hw.raw(`</li>`)
		for _, item := range site.Nav {
			hw.raw(`<li>`)
			if g, ok := item.(content.NavGroup); ok {
				hw.raw(`<details><summary class="` + sidebarItemClass + ` cursor-pointer">`)
				hw.text(g.Label)
				hw.raw(`</summary><ul class="ml-4 flex flex-col gap-1">`)
				for _, child := range g.Children() {
					hw.raw(`<li>`)
					hw.render(SmartLink(site.Links, child.URL, sidebarItemClass, Text(child.Label)))
					hw.raw(`</li>`)
				}
				hw.raw(`</ul></details>`)
			} else {
				hw.render(SmartLink(site.Links, item.Href(), sidebarItemClass, Text(item.Title())))
			}
			hw.raw(`</li>`)
		}
		hw.raw(`</ul>`)
		if len(site.Social) > 0 {
			hw.raw(`<h2 class="mb-4 text-sm font-semibold uppercase text-slate-500 dark:text-slate-400">Blog socials</h2>`)
			hw.render(SocialLinks(site))
		}
		hw.raw(`</div></details>`)
	})
}

const sidebarItemClass = "block truncate rounded-lg p-2 hover:bg-slate-100 dark:hover:bg-neutral-800"

// ThemeToggle posts to /theme/ and comes back to the current page.
func ThemeToggle(site Site) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<form method="post" action="/theme/">`)
		if site.CSRFToken != "" {
			hw.raw(`<input type="hidden" name="_csrf"`)
			hw.attr("value", site.CSRFToken)
			hw.raw(">")
		}
		hw.raw(`<button type="submit" aria-label="Toggle Dark Mode" class="relative flex h-10 w-10 items-center justify-center rounded-full bg-slate-100 dark:bg-neutral-800">`)
		hw.raw(`<span class="sr-only">Toggle dark mode</span>`)
		if site.Dark {
			hw.raw(`<svg width="22" height="22" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M21 12.79A9 9 0 1 1 11.21 3a7 7 0 0 0 9.79 9.79z"/></svg>`)
		} else {
			hw.raw(`<svg width="22" height="22" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><circle cx="12" cy="12" r="5"/><path d="M12 1v2M12 21v2M4.22 4.22l1.42 1.42M18.36 18.36l1.42 1.42M1 12h2M21 12h2M4.22 19.78l1.42-1.42M18.36 5.64l1.42-1.42"/></svg>`)
		}
		hw.raw(`</button></form>`)
	})
}

// SocialLinks renders the publication's profiles.
func SocialLinks(site Site) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<div class="flex flex-wrap items-center justify-center gap-4">`)
		for _, l := range site.Social {
			hw.render(SmartLink(site.Links, l.URL,
				"rounded-full border border-slate-200 px-3 py-1 text-sm hover:bg-slate-100 dark:border-neutral-700 dark:hover:bg-neutral-800",
				Text(l.Label)))
		}
		hw.raw(`</div>`)
	})
}

// Footer renders social links, the copyright line and policy links.
func Footer(site Site) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw(`<footer class="border-t py-20 dark:border-neutral-800"><div class="container mx-auto px-5"><div class="flex flex-col items-center gap-5 text-center text-slate-600 dark:text-neutral-300">`)
		if len(site.Social) > 0 {
			hw.render(SocialLinks(site))
		}
		if site.Copyright != "" {
			hw.raw(`<p>&copy; `)
			hw.text(site.Copyright)
			hw.raw(`</p>`)
		}
		if len(site.FooterLinks) > 0 {
			hw.raw(`<p>`)
			for i, l := range site.FooterLinks {
				if i > 0 {
					hw.raw(` · `)
				}
				hw.render(SmartLink(site.Links, l.URL, "hover:underline", Text(l.Label)))
			}
			hw.raw(`</p>`)
		}
		hw.raw(`</div></div></footer>`)
	})
}
