// Package sync reconciles the snippet files of a VS Code store and a Neovim
// store.
//
// A run takes one inventory of both snippets directories and makes two passes
// over it:
//
//   - Neovim -> VS Code: files only Neovim has are copied verbatim.
//   - VS Code -> Neovim: files only VS Code has (every VS Code file in force
//     mode) are decoded, stripped of // comment lines and have their scope
//     declarations translated to Neovim filetypes before being written.
//
// Afterwards the package.json manifest of the Neovim store is regenerated.
// Files are never deleted, and a file present in both stores is left alone
// unless force mode is on.
//
// # Usage
//
//	engine := sync.New(roots, sync.Options{WriteManifest: true})
//	result, err := engine.Run(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(result.Summary())
//
// # Progress Reporting
//
// Options.Progress receives one ProgressEvent per file considered by a pass.
//
// # Dry Run
//
// With Options.DryRun set, results describe what a run would do and nothing
// is written, including the manifest.
package sync
