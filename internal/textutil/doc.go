// Package textutil turns free text into filesystem-safe names.
package textutil
