package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/plmxml"
	plmerrors "github.com/jacoelho/plmxml/errors"
	"github.com/jacoelho/plmxml/sitemap"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("plmbom", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseDir := fs.String("base", "", "base directory for external file resolution (defaults to the document's directory)")
	sitesPath := fs.String("sites", "", "path to a site map YAML for external system URLs")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: %s [options] <document.xml>\n\n", os.Args[0]),
			writeln(stderr, "Prints the bill-of-materials tree of a PLMXML document."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		if err := writeln(stderr, "error: exactly one PLMXML file argument is required"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}
	xmlPath := remaining[0]

	var opts []plmxml.Option
	if *baseDir != "" {
		opts = append(opts, plmxml.WithBaseDir(*baseDir))
	}

	var sites *sitemap.Provider
	if *sitesPath != "" {
		var err error
		sites, err = sitemap.Load(*sitesPath)
		if err != nil {
			if writeErr := writef(stderr, "error loading site map: %v\n", err); writeErr != nil {
				return 1
			}
			return 1
		}
	}

	result, err := plmxml.ParseFile(xmlPath, opts...)
	if err != nil {
		if diags, ok := plmerrors.AsDiagnostics(err); ok {
			for _, d := range diags {
				if writeErr := writeln(stderr, d.Error()); writeErr != nil {
					return 1
				}
			}
			if writeErr := writef(stderr, "%s fails to parse\n", xmlPath); writeErr != nil {
				return 1
			}
			return 1
		}
		if writeErr := writef(stderr, "error parsing: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}

	if err := printResult(stdout, result, sites); err != nil {
		return 1
	}

	for _, d := range result.Diagnostics {
		if err := writeln(stderr, d.Error()); err != nil {
			return 1
		}
	}
	return 0
}

func printResult(w io.Writer, result *plmxml.Result, sites *sitemap.Provider) error {
	if result.Header.TransferContext != "" {
		if err := writef(w, "transfer context: %s\n", result.Header.TransferContext); err != nil {
			return err
		}
	}

	if len(result.ProductViews) == 0 {
		return writeln(w, "no product views found")
	}

	siteID := exportingSiteID(result)
	for _, view := range result.ProductViews {
		if err := writef(w, "product view %s\n", view.ID); err != nil {
			return err
		}
		for _, root := range view.Roots {
			if err := printNode(w, result, sites, siteID, root, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func printNode(w io.Writer, result *plmxml.Result, sites *sitemap.Provider, siteID string, node *plmxml.OccurrenceNode, depth int) error {
	indent := strings.Repeat("  ", depth)
	line := node.DisplayName
	if node.ProductID != "" {
		line = fmt.Sprintf("%s [%s]", line, node.ProductID)
	}
	if node.Revision != "" {
		line = fmt.Sprintf("%s rev %s", line, node.Revision)
	}
	if err := writef(w, "%s%s\n", indent, line); err != nil {
		return err
	}

	for _, dataSetID := range node.DataSetRefs {
		dataset, ok := result.DataSets[dataSetID]
		if !ok {
			if err := writef(w, "%s  dataset %s (unknown)\n", indent, dataSetID); err != nil {
				return err
			}
			continue
		}
		if err := writef(w, "%s  dataset %s (%s)\n", indent, dataset.Name, dataset.Type); err != nil {
			return err
		}
		if sites != nil && dataset.ExternalUID != "" {
			if link, ok := sites.ExternalURL(siteID, dataset.ExternalUID); ok {
				if err := writef(w, "%s    %s\n", indent, link); err != nil {
					return err
				}
			}
		}
		for _, fileID := range dataset.MemberRefs {
			file, ok := result.ExternalFiles[fileID]
			if !ok {
				if err := writef(w, "%s    file %s (unknown)\n", indent, fileID); err != nil {
					return err
				}
				continue
			}
			if err := writef(w, "%s    file %s\n", indent, file.Path); err != nil {
				return err
			}
		}
	}

	for _, child := range node.Children {
		if err := printNode(w, result, sites, siteID, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// exportingSiteID picks the site identifier used for external system links.
// PLMXML exports carry a single Site element in practice.
func exportingSiteID(result *plmxml.Result) string {
	for _, site := range result.Sites {
		if site.SiteID != "" {
			return site.SiteID
		}
	}
	return ""
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
