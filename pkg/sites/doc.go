// Package sites contains the per-site scraping adapters.
//
// Every supported gallery site implements the Adapter interface: extract
// candidate items from a listing page, resolve an item to its
// full-resolution image URL, locate the next listing page, and name the
// destination folder for a crawl. The crawl loop drives adapters without
// knowing which site it is talking to, so adding a site means writing one
// adapter, not another crawl loop.
//
// Sites differ in how much work resolution takes: WallHere and WallHaven
// link to a detail page that must be fetched to find the image, while
// WallpaperCat embeds the full image URL directly in the listing markup.
package sites
