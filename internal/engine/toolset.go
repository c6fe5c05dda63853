package engine

// ToolSet specifies which categories of tools to include in the registry.
type ToolSet struct {
	Filesystem bool // read_file, list_files, write_file, delete_file
	Search     bool // web_search
	Wiki       bool // wiki_lookup
	Execution  bool // run_python
	Browser    bool // browser_navigate, browser_click, browser_extract_text, browser_links, browser_select
	Notify     bool // send_notification
}

// FullToolSet enables every tool category.
func FullToolSet() ToolSet {
	return ToolSet{
		Filesystem: true,
		Search:     true,
		Wiki:       true,
		Execution:  true,
		Browser:    true,
		Notify:     true,
	}
}
