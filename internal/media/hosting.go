package media

import (
	"context"
	"path"

	"reelctl/internal/hosting"
)

// Target locates uploads inside a hosted repository. Files land at
// <Dir>/<name> on Branch and are referenced as <Prefix>/<name>.
type Target struct {
	Repo   string
	Branch string
	Dir    string
	Prefix string
}

func (t Target) repoPath(name string) string {
	return path.Join(t.Dir, name)
}

func (t Target) token(name string) string {
	return path.Join(t.Prefix, name)
}

func commitMessage(name string) string {
	return "add: background " + name
}

// Contents writes through the single-file contents endpoint.
type Contents struct {
	Client *hosting.Client
	Target Target
}

func (Contents) Name() string    { return "contents" }
func (Contents) MaxBytes() int64 { return MaxContentsBytes }

func (s Contents) Upload(ctx context.Context, file File) (string, error) {
	data, err := file.ReadAll()
	if err != nil {
		return "", stageErr(s.Name(), StageRead, err)
	}
	target := s.Target.repoPath(file.Name)
	sha, _, err := s.Client.ContentSHA(ctx, s.Target.Repo, target, s.Target.Branch)
	if err != nil {
		return "", stageErr(s.Name(), StageLookup, err)
	}
	_, err = s.Client.PutContent(ctx, s.Target.Repo, target, hosting.PutContentRequest{
		Message: commitMessage(file.Name),
		Content: data,
		SHA:     sha,
		Branch:  s.Target.Branch,
	})
	if err != nil {
		return "", stageErr(s.Name(), StagePut, err)
	}
	return s.Target.token(file.Name), nil
}

// GitData builds a commit from low-level git objects: blob, tree, commit,
// then moves the branch ref.
type GitData struct {
	Client *hosting.Client
	Target Target
}

func (GitData) Name() string    { return "gitdata" }
func (GitData) MaxBytes() int64 { return MaxGitDataBytes }

func (s GitData) Upload(ctx context.Context, file File) (string, error) {
	name := s.Name()
	repo := s.Target.Repo
	data, err := file.ReadAll()
	if err != nil {
		return "", stageErr(name, StageRead, err)
	}
	blob, err := s.Client.CreateBlob(ctx, repo, data)
	if err != nil {
		return "", stageErr(name, StageBlob, err)
	}
	head, err := s.Client.RefSHA(ctx, repo, s.Target.Branch)
	if err != nil {
		return "", stageErr(name, StageRef, err)
	}
	commit, err := s.Client.GetCommit(ctx, repo, head)
	if err != nil {
		return "", stageErr(name, StageCommit, err)
	}
	tree, err := s.Client.CreateTree(ctx, repo, commit.Tree.SHA, []hosting.TreeEntry{
		hosting.BlobEntry(s.Target.repoPath(file.Name), blob),
	})
	if err != nil {
		return "", stageErr(name, StageTree, err)
	}
	next, err := s.Client.CreateCommit(ctx, repo, commitMessage(file.Name), tree, []string{head})
	if err != nil {
		return "", stageErr(name, StageNewCommit, err)
	}
	if err := s.Client.UpdateRef(ctx, repo, s.Target.Branch, next); err != nil {
		return "", stageErr(name, StageUpdateRef, err)
	}
	return s.Target.token(file.Name), nil
}

// Release attaches files to a tagged release, replacing a same-named asset.
// The token is the asset's public download URL.
type Release struct {
	Client *hosting.Client
	Repo   string
	Tag    string
}

func (Release) Name() string    { return "release" }
func (Release) MaxBytes() int64 { return MaxReleaseBytes }

func (s Release) Upload(ctx context.Context, file File) (string, error) {
	name := s.Name()
	rel, found, err := s.Client.ReleaseByTag(ctx, s.Repo, s.Tag)
	if err != nil {
		return "", stageErr(name, StageRelease, err)
	}
	if !found {
		rel, err = s.Client.CreateRelease(ctx, s.Repo, s.Tag, s.Tag)
		if err != nil {
			return "", stageErr(name, StageRelease, err)
		}
	}
	if existing, ok := rel.FindAsset(file.Name); ok {
		if err := s.Client.DeleteAsset(ctx, s.Repo, existing.ID); err != nil {
			return "", stageErr(name, StageDeleteAsset, err)
		}
	}
	body, err := file.Open()
	if err != nil {
		return "", stageErr(name, StageRead, err)
	}
	defer body.Close()
	asset, err := s.Client.UploadAsset(ctx, rel, file.Name, file.ContentType, body, file.Size)
	if err != nil {
		return "", stageErr(name, StageUploadAsset, err)
	}
	if asset.BrowserDownloadURL != "" {
		return asset.BrowserDownloadURL, nil
	}
	return file.Name, nil
}
