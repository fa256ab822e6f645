// Package mediasearch finds and downloads stock media for keywords.
//
// Images come from Unsplash with Google Custom Search as a fallback; animated
// clips come from Tenor in MP4 form. Each provider is skipped when its
// credentials are not configured.
package mediasearch
